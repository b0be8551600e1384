// Package app assembles the eligibility service and its collaborators from
// configuration. Every entry point (HTTP server, Lambdas, initdb) goes
// through Build so they share the same wiring.
package app

import (
	"context"
	"fmt"

	"kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/metrics"
	"kisanmitra-scheme-engine/internal/services/cache"
	"kisanmitra-scheme-engine/internal/services/catalog"
	"kisanmitra-scheme-engine/internal/services/database"
	"kisanmitra-scheme-engine/internal/services/eligibility"
	s3service "kisanmitra-scheme-engine/internal/services/s3"
	"kisanmitra-scheme-engine/internal/services/ses"
	"kisanmitra-scheme-engine/internal/utils"
)

// Options select which collaborators Build connects.
type Options struct {
	// RequireDatabase fails Build when the database is unreachable.
	RequireDatabase bool
	// Storage connects the S3 service.
	Storage bool
	// Email connects SES when a sender address is configured.
	Email bool
}

// App holds the wired collaborators.
type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	DB       *database.DB
	Farmers  *database.FarmerRepository
	Schemes  *database.SchemeRepository
	Cache    *cache.MatchCache
	Storage  *s3service.Service
	Mailer   *ses.Service
	Service  *eligibility.Service
	closers  []func()
}

// Build connects the configured collaborators. The database and cache are
// optional unless required: a missing one is logged and the service runs
// without it.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := utils.GetLogger()

	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Catalog: cat}
	svcOpts := []eligibility.Option{eligibility.WithMetrics(metrics.Default)}

	db, err := database.New(cfg)
	switch {
	case err == nil:
		a.DB = db
		a.Farmers = database.NewFarmerRepository(db)
		a.Schemes = database.NewSchemeRepository(db)
		a.closers = append(a.closers, db.Close)
		svcOpts = append(svcOpts, eligibility.WithFarmerStore(a.Farmers))
	case opts.RequireDatabase:
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	default:
		logger.Warn("Running without database", utils.Error(err))
	}

	if cfg.CacheEnabled() {
		c, err := cache.NewFromConfig(ctx, cfg, metrics.Default)
		if err != nil {
			logger.Warn("Running without match cache", utils.Error(err))
		} else {
			a.Cache = c
			a.closers = append(a.closers, func() { _ = c.Close() })
			svcOpts = append(svcOpts, eligibility.WithCache(c))
		}
	}

	if opts.Storage {
		if a.Storage, err = s3service.NewService(ctx, cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	if opts.Email && cfg.SESSenderEmail != "" {
		if a.Mailer, err = ses.NewService(ctx, cfg); err != nil {
			a.Close()
			return nil, err
		}
		svcOpts = append(svcOpts, eligibility.WithNotifier(a.Mailer))
	}

	var source eligibility.SchemeSource = cat
	if cfg.SchemeSource == config.SchemeSourceDatabase {
		if a.Schemes == nil {
			a.Close()
			return nil, fmt.Errorf("scheme source %q needs a database", cfg.SchemeSource)
		}
		source = a.Schemes
	}

	a.Service = eligibility.New(source, svcOpts...)

	logger.Info("Application wired",
		utils.String("scheme_source", cfg.SchemeSource),
		utils.Bool("database", a.DB != nil),
		utils.Bool("cache", a.Cache != nil),
		utils.Bool("storage", a.Storage != nil),
		utils.Bool("email", a.Mailer != nil))

	return a, nil
}

// Close releases every connection Build opened.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
