package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kisanmitra-scheme-engine/internal/models"
)

const farmerColumns = `id, name, age, gender, phone, email, state, district, village,
	land_ownership, land_size, land_unit, crop_types, soil_type, irrigation_type,
	annual_income, family_size, farmer_category, bank_account, aadhaar_linked,
	batch_id, joined_date`

const insertFarmerSQL = `
	INSERT INTO farmers (
		name, age, gender, phone, email, state, district, village,
		land_ownership, land_size, land_unit, crop_types, soil_type, irrigation_type,
		annual_income, family_size, farmer_category, bank_account, aadhaar_linked,
		batch_id, joined_date
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	RETURNING id`

// FarmerRepository handles farmer database operations.
type FarmerRepository struct {
	db *DB
}

// NewFarmerRepository creates a new farmer repository.
func NewFarmerRepository(db *DB) *FarmerRepository {
	return &FarmerRepository{db: db}
}

// Create inserts a farmer and sets its ID and joined date.
func (r *FarmerRepository) Create(ctx context.Context, farmer *models.FarmerProfile) (int64, error) {
	if farmer.JoinedDate.IsZero() {
		farmer.JoinedDate = time.Now().UTC()
	}

	var id int64
	if err := r.db.QueryRow(ctx, insertFarmerSQL, farmerArgs(farmer)...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create farmer: %w", err)
	}

	farmer.ID = id
	return id, nil
}

// BulkInsert inserts farmers in one transaction. A failing row is recorded
// in the result and the remaining rows are still attempted.
func (r *FarmerRepository) BulkInsert(ctx context.Context, farmers []*models.FarmerProfile) (*models.BulkInsertResult, error) {
	result := &models.BulkInsertResult{
		InsertedIDs: []int64{},
		Errors:      []string{},
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for i, farmer := range farmers {
			if farmer.JoinedDate.IsZero() {
				farmer.JoinedDate = time.Now().UTC()
			}

			var id int64
			err := WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
				return sp.QueryRow(ctx, insertFarmerSQL, farmerArgs(farmer)...).Scan(&id)
			})
			if errors.Is(err, ErrSavepoint) {
				return err
			}
			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("farmer %d (%s): %v", i+1, farmer.Name, err))
				continue
			}

			farmer.ID = id
			result.InsertedCount++
			result.InsertedIDs = append(result.InsertedIDs, id)
		}
		return nil
	})

	if err != nil {
		// Nothing from a rolled back transaction is stored.
		result.InsertedCount = 0
		result.InsertedIDs = []int64{}
		result.FailedCount = len(farmers)
		return result, fmt.Errorf("bulk insert failed: %w", err)
	}

	return result, nil
}

// GetByID retrieves a farmer by ID. It returns models.ErrFarmerNotFound
// when no row exists.
func (r *FarmerRepository) GetByID(ctx context.Context, id int64) (*models.FarmerProfile, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE id = $1`

	farmer, err := scanFarmer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("farmer %d: %w", id, models.ErrFarmerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}

	return farmer, nil
}

// GetAll retrieves every farmer, newest first.
func (r *FarmerRepository) GetAll(ctx context.Context) ([]*models.FarmerProfile, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers ORDER BY joined_date DESC, id DESC`
	return r.query(ctx, query)
}

// GetByBatchID retrieves the farmers ingested in one batch.
func (r *FarmerRepository) GetByBatchID(ctx context.Context, batchID string) ([]*models.FarmerProfile, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE batch_id = $1 ORDER BY id`
	return r.query(ctx, query, batchID)
}

// Delete removes a farmer.
func (r *FarmerRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.db.Exec(ctx, "DELETE FROM farmers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete farmer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("farmer %d: %w", id, models.ErrFarmerNotFound)
	}
	return nil
}

func (r *FarmerRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.FarmerProfile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query farmers: %w", err)
	}
	defer rows.Close()

	farmers := []*models.FarmerProfile{}
	for rows.Next() {
		farmer, err := scanFarmer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan farmer: %w", err)
		}
		farmers = append(farmers, farmer)
	}

	return farmers, rows.Err()
}

func farmerArgs(f *models.FarmerProfile) []interface{} {
	crops := f.CropTypes
	if crops == nil {
		crops = []string{}
	}

	return []interface{}{
		f.Name,
		f.Age,
		f.Gender,
		f.Phone,
		f.Email,
		f.State,
		f.District,
		f.Village,
		f.LandOwnership,
		f.LandSize,
		string(f.LandUnit),
		crops,
		f.SoilType,
		f.IrrigationType,
		f.AnnualIncome,
		f.FamilySize,
		f.FarmerCategory,
		f.BankAccount,
		f.AadhaarLinked,
		f.BatchID,
		f.JoinedDate,
	}
}

// scanFarmer scans either a pgx.Row or the current row of pgx.Rows.
func scanFarmer(row pgx.Row) (*models.FarmerProfile, error) {
	var f models.FarmerProfile
	var unit string

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Age,
		&f.Gender,
		&f.Phone,
		&f.Email,
		&f.State,
		&f.District,
		&f.Village,
		&f.LandOwnership,
		&f.LandSize,
		&unit,
		&f.CropTypes,
		&f.SoilType,
		&f.IrrigationType,
		&f.AnnualIncome,
		&f.FamilySize,
		&f.FarmerCategory,
		&f.BankAccount,
		&f.AadhaarLinked,
		&f.BatchID,
		&f.JoinedDate,
	)
	if err != nil {
		return nil, err
	}

	f.LandUnit = models.LandUnit(unit)
	return &f, nil
}
