package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/services/catalog"
	"kisanmitra-scheme-engine/internal/services/matcher"
)

func TestDefault_LoadsBuiltInSchemes(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	schemes := c.All()
	require.Len(t, schemes, 6)

	m := matcher.NewDefault()
	for _, s := range schemes {
		assert.True(t, m.HasRules(s.ID), "scheme %s should have a rule set", s.ID)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.RequiredDocuments)
	}
}

func TestCatalog_Get(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	s, err := c.Get(models.SchemeIDKisanCreditCard)
	require.NoError(t, err)
	assert.Equal(t, "Kisan Credit Card", s.Name)

	_, err = c.Get("SCH-404")
	assert.True(t, errors.Is(err, models.ErrSchemeNotFound))
}

func TestCatalog_Filter(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter models.SchemeFilter
		want   []string
	}{
		{"no filter", models.SchemeFilter{}, []string{"SCH-001", "SCH-002", "SCH-003", "SCH-004", "SCH-005", "SCH-006"}},
		{"all wildcard", models.SchemeFilter{Ministry: "all", Category: "ALL"}, []string{"SCH-001", "SCH-002", "SCH-003", "SCH-004", "SCH-005", "SCH-006"}},
		{"search name", models.SchemeFilter{Query: "kisan"}, []string{"SCH-001", "SCH-005"}},
		{"search description", models.SchemeFilter{Query: "SOIL TESTING"}, []string{"SCH-003"}},
		{"ministry", models.SchemeFilter{Ministry: "Ministry of Finance"}, []string{"SCH-005"}},
		{"category", models.SchemeFilter{Category: "Irrigation"}, []string{"SCH-004"}},
		{"combined with no match", models.SchemeFilter{Query: "insurance", Category: "Credit"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, s := range c.Filter(tt.filter) {
				got = append(got, s.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_DistinctValues(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Ministry of Agriculture & Farmers Welfare",
		"Ministry of Finance",
		"Ministry of Jal Shakti",
	}, c.Ministries())
	assert.Len(t, c.Categories(), 6)
}

func TestCatalog_ListSchemesReturnsCopy(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	first, err := c.ListSchemes(context.Background())
	require.NoError(t, err)
	first[0] = nil

	second, err := c.ListSchemes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, second[0])
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := catalog.New([]*models.Scheme{{ID: "SCH-001"}, {ID: "SCH-001"}})
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("not json"))
	assert.Error(t, err)
}
