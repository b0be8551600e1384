// Package cache stores ranked match results in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/metrics"
	"kisanmitra-scheme-engine/internal/models"
)

// KeyPrefix namespaces every match cache key.
const KeyPrefix = "kisanmitra:matches:"

// MatchCache is a Redis-backed cache of ranked results per farmer.
type MatchCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// New wraps an existing client. A zero ttl stores entries without expiry.
func New(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *MatchCache {
	return &MatchCache{client: client, ttl: ttl, metrics: m}
}

// NewFromConfig connects to the configured Redis and pings it.
func NewFromConfig(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*MatchCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return New(client, cfg.MatchCacheTTL, m), nil
}

// Key returns the cache key for a profile ranked against the given schemes.
// Any change to the profile or to the scheme list yields a different key.
func Key(profile *models.FarmerProfile, schemes []*models.Scheme) (string, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}

	h := sha256.New()
	h.Write(payload)
	for _, s := range schemes {
		if s == nil {
			continue
		}
		h.Write([]byte{0})
		h.Write([]byte(s.ID))
	}

	return farmerPrefix(profile.ID) + hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached results and whether the lookup was a hit.
func (c *MatchCache) Get(ctx context.Context, profile *models.FarmerProfile, schemes []*models.Scheme) ([]models.MatchResult, bool, error) {
	key, err := Key(profile, schemes)
	if err != nil {
		c.metrics.IncrementCache(metrics.CacheError)
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncrementCache(metrics.CacheMiss)
		return nil, false, nil
	}
	if err != nil {
		c.metrics.IncrementCache(metrics.CacheError)
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var results []models.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		c.metrics.IncrementCache(metrics.CacheError)
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}

	c.metrics.IncrementCache(metrics.CacheHit)
	return results, true, nil
}

// Set stores results for the profile and scheme list.
func (c *MatchCache) Set(ctx context.Context, profile *models.FarmerProfile, schemes []*models.Scheme, results []models.MatchResult) error {
	key, err := Key(profile, schemes)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every cached entry for a farmer.
func (c *MatchCache) Invalidate(ctx context.Context, farmerID int64) error {
	iter := c.client.Scan(ctx, 0, farmerPrefix(farmerID)+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}

// Ping checks connectivity.
func (c *MatchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *MatchCache) Close() error {
	return c.client.Close()
}

func farmerPrefix(farmerID int64) string {
	return KeyPrefix + strconv.FormatInt(farmerID, 10) + ":"
}
