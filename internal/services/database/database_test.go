package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra-scheme-engine/internal/models"
)

// openTestDB connects to DATABASE_URL or skips the test.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping database integration test")
	}

	db, err := NewFromURL(url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.ApplySchema(ctx))

	return db
}

func TestFarmerRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewFarmerRepository(db)
	ctx := context.Background()

	farmer := &models.FarmerProfile{
		Name:           "Ramesh Patil",
		State:          "Maharashtra",
		LandOwnership:  models.LandOwnershipOwned,
		LandSize:       2,
		LandUnit:       models.LandUnitHectares,
		CropTypes:      []string{"Cotton", "Soybean"},
		IrrigationType: models.IrrigationRainfed,
		AnnualIncome:   150000,
		FamilySize:     5,
		BankAccount:    true,
		AadhaarLinked:  true,
		BatchID:        "test-roundtrip",
	}

	id, err := repo.Create(ctx, farmer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, farmer.Name, got.Name)
	assert.Equal(t, models.LandUnitHectares, got.LandUnit)
	assert.Equal(t, []string{"Cotton", "Soybean"}, got.CropTypes)
	assert.True(t, got.AadhaarLinked)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, models.ErrFarmerNotFound)
}

func TestFarmerRepository_BulkInsert(t *testing.T) {
	db := openTestDB(t)
	repo := NewFarmerRepository(db)
	ctx := context.Background()

	farmers := []*models.FarmerProfile{
		{Name: "A", State: "Gujarat", LandSize: 1, LandUnit: models.LandUnitAcres, FamilySize: 1, BatchID: "test-bulk"},
		{Name: "B", State: "Gujarat", LandSize: 4, LandUnit: models.LandUnitBigha, FamilySize: 2, BatchID: "test-bulk"},
	}

	result, err := repo.BulkInsert(ctx, farmers)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, id := range result.InsertedIDs {
			_ = repo.Delete(context.Background(), id)
		}
	})

	assert.Equal(t, 2, result.InsertedCount)
	assert.Zero(t, result.FailedCount)
	assert.NotZero(t, farmers[0].ID)

	batch, err := repo.GetByBatchID(ctx, "test-bulk")
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestFarmerRepository_BulkInsertKeepsGoodRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewFarmerRepository(db)
	ctx := context.Background()

	farmers := []*models.FarmerProfile{
		{Name: "Good One", State: "Punjab", LandSize: 2, LandUnit: models.LandUnitAcres, FamilySize: 3, BatchID: "test-partial"},
		{Name: "Bad\x00Row", State: "Punjab", LandSize: 2, LandUnit: models.LandUnitAcres, FamilySize: 3, BatchID: "test-partial"},
		{Name: "Good Two", State: "Punjab", LandSize: 1, LandUnit: models.LandUnitHectares, FamilySize: 2, BatchID: "test-partial"},
	}

	result, err := repo.BulkInsert(ctx, farmers)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, id := range result.InsertedIDs {
			_ = repo.Delete(context.Background(), id)
		}
	})

	assert.Equal(t, 2, result.InsertedCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "farmer 2")

	batch, err := repo.GetByBatchID(ctx, "test-partial")
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestSchemeRepository_UpsertAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewSchemeRepository(db)
	ctx := context.Background()

	scheme := &models.Scheme{
		ID:                "SCH-TEST",
		Name:              "Test Scheme",
		Ministry:          "Agriculture & Farmers Welfare",
		RequiredDocuments: []string{"Aadhaar Card"},
		IsActive:          true,
	}
	require.NoError(t, repo.Upsert(ctx, scheme))
	t.Cleanup(func() { _, _ = db.Exec(context.Background(), "DELETE FROM schemes WHERE id = $1", scheme.ID) })

	scheme.Name = "Renamed Scheme"
	require.NoError(t, repo.Upsert(ctx, scheme))

	got, err := repo.GetByID(ctx, scheme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Scheme", got.Name)
	assert.NotNil(t, got.UpdatedAt)

	require.NoError(t, repo.Deactivate(ctx, scheme.ID))
	active, err := repo.ListSchemes(ctx)
	require.NoError(t, err)
	for _, s := range active {
		assert.NotEqual(t, scheme.ID, s.ID)
	}

	_, err = repo.GetByID(ctx, "SCH-MISSING")
	assert.ErrorIs(t, err, models.ErrSchemeNotFound)
}
