package utils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/utils"
)

func TestCSVParser_ValidFile(t *testing.T) {
	csvContent := `name,email,state,district,land_ownership,land_size,land_unit,crop_types,soil_type,irrigation_type,annual_income,family_size,farmer_category,bank_account,aadhaar_linked
Ramesh Kumar,ramesh@example.com,Madhya Pradesh,Sehore,Owned,2.5,Hectares,Wheat;Soybean,Black Soil,Tubewell,180000,5,Small Farmer,yes,yes
Sunita Devi,,Rajasthan,Jaipur,Leased,4,Bigha,"Mustard, Bajra",Sandy,Rainfed,"1,20,000",4,Marginal Farmer,no,Y`

	parser := utils.NewCSVParser()
	farmers, errs := parser.ParseFarmers(csvContent, "batch-001")

	require.Empty(t, errs, "Expected no parse errors")
	require.Len(t, farmers, 2)

	first := farmers[0]
	assert.Equal(t, "Ramesh Kumar", first.Name)
	assert.Equal(t, "ramesh@example.com", first.Email)
	assert.Equal(t, models.LandUnitHectares, first.LandUnit)
	assert.Equal(t, 2.5, first.LandSize)
	assert.Equal(t, []string{"Wheat", "Soybean"}, first.CropTypes)
	assert.Equal(t, float64(180000), first.AnnualIncome)
	assert.True(t, first.BankAccount)
	assert.True(t, first.AadhaarLinked)
	assert.Equal(t, "batch-001", first.BatchID)

	second := farmers[1]
	assert.Equal(t, models.LandUnitBigha, second.LandUnit)
	assert.Equal(t, []string{"Mustard", "Bajra"}, second.CropTypes)
	assert.Equal(t, float64(120000), second.AnnualIncome)
	assert.False(t, second.BankAccount)
	assert.True(t, second.AadhaarLinked)
}

func TestCSVParser_ColumnAliasesAndDefaults(t *testing.T) {
	csvContent := "\ufeffFarmer Name,State,Acreage,Monthly Income,Aadhar\nGopal,Gujarat,3,15000,linked"

	parser := utils.NewCSVParser()
	farmers, errs := parser.ParseFarmers(csvContent, "batch-002")

	require.Empty(t, errs)
	require.Len(t, farmers, 1)

	f := farmers[0]
	assert.Equal(t, "Gopal", f.Name)
	assert.Equal(t, models.LandUnitAcres, f.LandUnit, "unit defaults to acres")
	assert.Equal(t, float64(180000), f.AnnualIncome, "monthly income is annualised")
	assert.Equal(t, 1, f.FamilySize)
	assert.True(t, f.AadhaarLinked)
	assert.Empty(t, f.CropTypes)
}

func TestCSVParser_MissingRequiredColumns(t *testing.T) {
	csvContent := `name,state,land_size
Ramesh,Bihar,2`

	parser := utils.NewCSVParser()
	farmers, errs := parser.ParseFarmers(csvContent, "batch")

	assert.Empty(t, farmers)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], utils.ErrMissingColumns))
	assert.Contains(t, errs[0].Error(), "annual_income")
}

func TestCSVParser_EmptyFile(t *testing.T) {
	parser := utils.NewCSVParser()
	farmers, errs := parser.ParseFarmers("   ", "batch")

	assert.Nil(t, farmers)
	require.Len(t, errs, 1)
	assert.Equal(t, utils.ErrEmptyCSV, errs[0])
}

func TestCSVParser_InvalidRowsAreReported(t *testing.T) {
	csvContent := `name,state,land_size,land_unit,annual_income,bank_account
Valid Farmer,Bihar,2,Acres,90000,yes
,Bihar,2,Acres,90000,yes
Bad Land,Bihar,0,Acres,90000,yes
Bad Unit,Bihar,2,Guntha,90000,yes
Bad Bool,Bihar,2,Acres,90000,maybe
Bad Income,Bihar,2,Acres,lots,no`

	parser := utils.NewCSVParser()
	farmers, errs := parser.ParseFarmers(csvContent, "batch")

	require.Len(t, farmers, 1)
	assert.Equal(t, "Valid Farmer", farmers[0].Name)
	require.Len(t, errs, 5)
	assert.True(t, errors.Is(errs[0], models.ErrEmptyFarmerName))
	assert.True(t, errors.Is(errs[1], models.ErrInvalidLandSize))
	assert.True(t, errors.Is(errs[2], models.ErrInvalidLandUnit))
	assert.True(t, errors.Is(errs[3], utils.ErrInvalidBool))
	assert.Contains(t, errs[4].Error(), "line 7")
}

func TestCSVParser_AllRowsInvalid(t *testing.T) {
	csvContent := `name,state,land_size,annual_income
A,Bihar,-1,100`

	parser := utils.NewCSVParser()
	farmers, errs := parser.ParseFarmers(csvContent, "batch")

	assert.Empty(t, farmers)
	require.Len(t, errs, 2)
	assert.Equal(t, utils.ErrNoDataRows, errs[0])
}

func TestValidateCSVStructure(t *testing.T) {
	valid := utils.ValidateCSVStructure("name,state,land,income\nA,B,1,2\nC,D,3,4")
	assert.True(t, valid.Valid)
	assert.Equal(t, 2, valid.RowCount)
	assert.Empty(t, valid.MissingColumns)

	missing := utils.ValidateCSVStructure("name,state\nA,B")
	assert.False(t, missing.Valid)
	assert.Equal(t, []string{"land_size", "annual_income"}, missing.MissingColumns)

	empty := utils.ValidateCSVStructure("")
	assert.False(t, empty.Valid)
	assert.Equal(t, []string{"empty file"}, empty.Errors)
}
