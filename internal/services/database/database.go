// Package database provides PostgreSQL persistence for farmers and schemes.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kisanmitra-scheme-engine/internal/config"
)

// Pool sizing shared by the server and the Lambda handlers.
const (
	maxConns          = 10
	minConns          = 2
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 30 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 10 * time.Second
)

// ErrSavepoint marks a savepoint that could not be opened, rolled back or
// released. The enclosing transaction is unusable after it.
var ErrSavepoint = errors.New("savepoint failed")

// DB is the pgx pool behind the farmer and scheme repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New connects using the DSN built from the application config.
func New(cfg *config.Config) (*DB, error) {
	return NewFromURL(cfg.DatabaseURL())
}

// NewFromURL connects to an explicit DSN and pings it.
func NewFromURL(databaseURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// ApplySchema creates the tables and indexes if they do not exist.
func (db *DB) ApplySchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Exec runs a statement and returns the number of affected rows.
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	tag, err := db.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}

// WithTransaction runs fn in a transaction that commits when fn returns nil
// and rolls back otherwise.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, db.pool, fn); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

// WithSavepoint runs fn inside a savepoint of tx. When fn fails only the
// savepoint is rolled back, tx stays usable and fn's error is returned
// unchanged. Failures managing the savepoint itself wrap ErrSavepoint.
func WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(sp pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrSavepoint, err)
	}

	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w: rollback: %v", ErrSavepoint, rbErr)
		}
		return err
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("%w: release: %v", ErrSavepoint, err)
	}
	return nil
}
