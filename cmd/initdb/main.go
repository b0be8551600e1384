// Command initdb creates the database if needed, applies the schema,
// seeds the schemes table from the bundled catalog and deactivates schemes
// the catalog no longer lists.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/services/catalog"
	"kisanmitra-scheme-engine/internal/services/database"
)

func main() {
	fmt.Println("=== Database Initialization ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load config", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("📡 Connecting to PostgreSQL server...")
	if err := ensureDatabase(ctx, cfg); err != nil {
		fail("Failed to prepare database", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		fail("Failed to connect to database", err)
	}
	defer db.Close()

	fmt.Println("🚀 Applying schema...")
	if err := db.ApplySchema(ctx); err != nil {
		fail("Failed to apply schema", err)
	}
	fmt.Println("✅ Schema applied")

	cat, err := catalog.Default()
	if err != nil {
		fail("Failed to load scheme catalog", err)
	}

	repo := database.NewSchemeRepository(db)
	known := make(map[string]bool, len(cat.All()))
	for _, scheme := range cat.All() {
		known[scheme.ID] = true
		if err := repo.Upsert(ctx, scheme); err != nil {
			fail("Failed to seed scheme "+scheme.ID, err)
		}
	}

	active, err := repo.GetAllActive(ctx)
	if err != nil {
		fail("Failed to list schemes", err)
	}

	fmt.Println()
	fmt.Println("   📋 Schemes:")
	for _, s := range active {
		if !known[s.ID] {
			// Retired from the catalog
			if err := repo.Deactivate(ctx, s.ID); err != nil {
				fail("Failed to deactivate scheme "+s.ID, err)
			}
			fmt.Printf("   %s  %s (deactivated)\n", s.ID, s.Name)
			continue
		}
		fmt.Printf("   %s  %s (%s)\n", s.ID, s.Name, s.Category)
	}
	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
}

// ensureDatabase creates cfg.DBName through the postgres maintenance
// database when it does not exist yet.
func ensureDatabase(ctx context.Context, cfg *config.Config) error {
	adminURL := strings.Replace(cfg.DatabaseURL(), "/"+cfg.DBName+"?", "/postgres?", 1)

	conn, err := pgx.Connect(ctx, adminURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		fmt.Printf("✅ Database '%s' already exists\n", cfg.DBName)
		return nil
	}

	fmt.Printf("📦 Creating '%s' database...\n", cfg.DBName)
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}

func fail(msg string, err error) {
	fmt.Printf("❌ %s: %v\n", msg, err)
	os.Exit(1)
}
