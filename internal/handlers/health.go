package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/services/cache"
	"kisanmitra-scheme-engine/internal/services/database"
	"kisanmitra-scheme-engine/internal/utils"
)

// Dependency states reported by the health check.
const (
	StatusConnected     = "connected"
	StatusDisconnected  = "disconnected"
	StatusNotConfigured = "not configured"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	database Checker
	cache    Checker
	closers  []func()
}

// NewHealthHandler connects to the configured dependencies. Missing or
// unreachable dependencies are reported, not fatal.
func NewHealthHandler(cfg *appConfig.Config) *HealthHandler {
	h := &HealthHandler{}
	logger := utils.GetLogger()

	if db, err := database.New(cfg); err != nil {
		logger.Warn("Health check running without database", utils.Error(err))
	} else {
		h.database = db.HealthCheck
		h.closers = append(h.closers, db.Close)
	}

	if cfg.CacheEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if c, err := cache.NewFromConfig(ctx, cfg, nil); err != nil {
			logger.Warn("Health check running without cache", utils.Error(err))
		} else {
			h.cache = c.Ping
			h.closers = append(h.closers, func() { _ = c.Close() })
		}
	}

	return h
}

// NewHealthHandlerWith builds a handler over explicit checks. Nil means not configured.
func NewHealthHandlerWith(dbCheck, cacheCheck Checker) *HealthHandler {
	return &HealthHandler{database: dbCheck, cache: cacheCheck}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
}

// Check runs the dependency checks.
func (h *HealthHandler) Check(ctx context.Context) HealthResponse {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "kisanmitra-scheme-engine",
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     getEnvOrDefault("STAGE", "unknown"),
		Database:  probe(ctx, h.database),
		Cache:     probe(ctx, h.cache),
	}

	if response.Database == StatusDisconnected || response.Cache == StatusDisconnected {
		response.Status = "degraded"
	}

	return response
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response := h.Check(ctx)

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return jsonResponse(corsHeaders("GET,OPTIONS"), statusCode, Response{
		Success: statusCode == http.StatusOK,
		Data:    response,
	})
}

// Close cleans up resources.
func (h *HealthHandler) Close() {
	for _, c := range h.closers {
		c()
	}
}

func probe(ctx context.Context, check Checker) string {
	if check == nil {
		return StatusNotConfigured
	}
	if err := check(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
