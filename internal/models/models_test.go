package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kisanmitra-scheme-engine/internal/models"
)

func validProfile() *models.FarmerProfile {
	return &models.FarmerProfile{
		Name:          "Lakshmi",
		Age:           38,
		State:         "Karnataka",
		LandOwnership: models.LandOwnershipOwned,
		LandSize:      1.5,
		LandUnit:      models.LandUnitHectares,
		AnnualIncome:  95000,
		FamilySize:    4,
		Email:         "lakshmi@example.com",
	}
}

func TestValidateFarmerProfile(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.FarmerProfile)
		wantErr error
	}{
		{"valid", func(p *models.FarmerProfile) {}, nil},
		{"age not given", func(p *models.FarmerProfile) { p.Age = 0 }, nil},
		{"blank name", func(p *models.FarmerProfile) { p.Name = "  " }, models.ErrEmptyFarmerName},
		{"too young", func(p *models.FarmerProfile) { p.Age = 12 }, models.ErrInvalidAge},
		{"zero land", func(p *models.FarmerProfile) { p.LandSize = 0 }, models.ErrInvalidLandSize},
		{"unknown unit", func(p *models.FarmerProfile) { p.LandUnit = "Kanal" }, models.ErrInvalidLandUnit},
		{"negative income", func(p *models.FarmerProfile) { p.AnnualIncome = -1 }, models.ErrInvalidIncome},
		{"empty family", func(p *models.FarmerProfile) { p.FamilySize = 0 }, models.ErrInvalidFamilySize},
		{"bad email", func(p *models.FarmerProfile) { p.Email = "lakshmi@" }, models.ErrInvalidEmail},
		{"no email", func(p *models.FarmerProfile) { p.Email = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			assert.Equal(t, tt.wantErr, models.ValidateFarmerProfile(p))
		})
	}
}

func TestParseLandUnit(t *testing.T) {
	tests := []struct {
		in     string
		want   models.LandUnit
		wantOK bool
	}{
		{"Acres", models.LandUnitAcres, true},
		{" hectare ", models.LandUnitHectares, true},
		{"HA", models.LandUnitHectares, true},
		{"bighas", models.LandUnitBigha, true},
		{"guntha", models.LandUnitAcres, false},
		{"", models.LandUnitAcres, false},
	}

	for _, tt := range tests {
		got, ok := models.ParseLandUnit(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestLandUnit_AcresPerUnit(t *testing.T) {
	assert.Equal(t, 1.0, models.LandUnitAcres.AcresPerUnit())
	assert.Equal(t, 2.47, models.LandUnitHectares.AcresPerUnit())
	assert.Equal(t, 0.625, models.LandUnitBigha.AcresPerUnit())
	assert.Equal(t, 1.0, models.LandUnit("Marla").AcresPerUnit())
}

func TestFarmerProfile_Helpers(t *testing.T) {
	p := validProfile()
	assert.True(t, p.OwnsLand())
	assert.False(t, p.IsPriorityCategory())

	p.FarmerCategory = models.FarmerCategoryMarginal
	p.LandOwnership = models.LandOwnershipGovernmentAllotted
	assert.True(t, p.IsPriorityCategory())
	assert.False(t, p.OwnsLand())
}

func TestMatchResult_ToSummary(t *testing.T) {
	r := &models.MatchResult{
		Scheme:     &models.Scheme{ID: "SCH-003", Name: "Soil Health Card", BenefitAmount: "Free", Deadline: "Ongoing"},
		MatchScore: 75,
		IsEligible: true,
	}

	assert.Equal(t, models.MatchSummary{
		SchemeID:      "SCH-003",
		SchemeName:    "Soil Health Card",
		BenefitAmount: "Free",
		Deadline:      "Ongoing",
		MatchScore:    75,
		IsEligible:    true,
	}, r.ToSummary())

	empty := &models.MatchResult{}
	assert.Equal(t, "", empty.SchemeID())
}
