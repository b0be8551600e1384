// Package main runs the scheme eligibility API as a plain HTTP server for
// local development and container deployments.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kisanmitra-scheme-engine/internal/app"
	"kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/handlers"
	"kisanmitra-scheme-engine/internal/utils"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, app.Options{
		Storage: cfg.S3Bucket != "",
		Email:   true,
	})
	if err != nil {
		logger.Fatal("Failed to start", utils.Error(err))
	}
	defer a.Close()

	var dbCheck, cacheCheck handlers.Checker
	if a.DB != nil {
		dbCheck = a.DB.HealthCheck
	}
	if a.Cache != nil {
		cacheCheck = a.Cache.Ping
	}
	health := handlers.NewHealthHandlerWith(dbCheck, cacheCheck)

	var presigner *handlers.PresignedURLHandler
	if a.Storage != nil {
		presigner = handlers.NewPresignedURLHandler(a.Storage)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler: newServer(a.Service, health, presigner).routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown failed", utils.Error(err))
		}
	}()

	logger.Info("KisanMitra scheme engine API listening",
		utils.String("addr", srv.Addr),
		utils.String("stage", cfg.Stage))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", utils.Error(err))
	}
}
