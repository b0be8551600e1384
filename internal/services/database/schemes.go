package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kisanmitra-scheme-engine/internal/models"
)

const schemeColumns = `id, name, ministry, description, benefit_amount, eligibility,
	category, required_documents, deadline, is_active, updated_at`

// SchemeRepository handles scheme database operations.
type SchemeRepository struct {
	db *DB
}

// NewSchemeRepository creates a new scheme repository.
func NewSchemeRepository(db *DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

// Upsert inserts a scheme or replaces the stored copy with the same ID.
func (r *SchemeRepository) Upsert(ctx context.Context, scheme *models.Scheme) error {
	docs := scheme.RequiredDocuments
	if docs == nil {
		docs = []string{}
	}

	query := `
		INSERT INTO schemes (` + schemeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			ministry = EXCLUDED.ministry,
			description = EXCLUDED.description,
			benefit_amount = EXCLUDED.benefit_amount,
			eligibility = EXCLUDED.eligibility,
			category = EXCLUDED.category,
			required_documents = EXCLUDED.required_documents,
			deadline = EXCLUDED.deadline,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		scheme.ID,
		scheme.Name,
		scheme.Ministry,
		scheme.Description,
		scheme.BenefitAmount,
		scheme.Eligibility,
		scheme.Category,
		docs,
		scheme.Deadline,
		scheme.IsActive,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scheme %s: %w", scheme.ID, err)
	}

	return nil
}

// GetByID retrieves a scheme. It returns models.ErrSchemeNotFound when no
// row exists.
func (r *SchemeRepository) GetByID(ctx context.Context, id string) (*models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE id = $1`

	scheme, err := scanScheme(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("scheme %s: %w", id, models.ErrSchemeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheme: %w", err)
	}

	return scheme, nil
}

// GetAllActive retrieves all active schemes ordered by ID.
func (r *SchemeRepository) GetAllActive(ctx context.Context) ([]*models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE is_active = true ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes: %w", err)
	}
	defer rows.Close()

	schemes := []*models.Scheme{}
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheme: %w", err)
		}
		schemes = append(schemes, scheme)
	}

	return schemes, rows.Err()
}

// ListSchemes returns the active schemes.
func (r *SchemeRepository) ListSchemes(ctx context.Context) ([]*models.Scheme, error) {
	return r.GetAllActive(ctx)
}

// Deactivate hides a scheme from matching without deleting it.
func (r *SchemeRepository) Deactivate(ctx context.Context, id string) error {
	affected, err := r.db.Exec(ctx, "UPDATE schemes SET is_active = false, updated_at = $2 WHERE id = $1", id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate scheme: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scheme %s: %w", id, models.ErrSchemeNotFound)
	}
	return nil
}

func scanScheme(row pgx.Row) (*models.Scheme, error) {
	var s models.Scheme
	var updatedAt time.Time

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Ministry,
		&s.Description,
		&s.BenefitAmount,
		&s.Eligibility,
		&s.Category,
		&s.RequiredDocuments,
		&s.Deadline,
		&s.IsActive,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.UpdatedAt = &updatedAt
	return &s, nil
}
