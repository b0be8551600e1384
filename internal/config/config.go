// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Scheme sources.
const (
	SchemeSourceCatalog  = "catalog"
	SchemeSourceDatabase = "database"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MatchCacheTTL time.Duration

	// SES
	SESSenderEmail string
	DashboardURL   string

	// Matching
	SchemeSource string

	// Application
	Port     string
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion: getEnv("AWS_REGION", "ap-south-1"),
		S3Bucket:  getEnv("S3_BUCKET", "kisanmitra-farmer-uploads-dev"),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("KISAN_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("KISAN_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("KISAN_DB_NAME", "kisanmitra")),
		DBUser:     getEnv("DB_USER", getEnv("KISAN_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("KISAN_DB_PASSWORD", "")),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		MatchCacheTTL: getEnvDuration("MATCH_CACHE_TTL", 15*time.Minute),

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		DashboardURL:   getEnv("DASHBOARD_URL", "http://localhost:8080/"),

		// Matching
		SchemeSource: getEnv("SCHEME_SOURCE", SchemeSourceCatalog),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration retrieves an environment variable as a duration or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
