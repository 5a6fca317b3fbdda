package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"riskforge/internal/config"
	"riskforge/pkg/logger"
)

// RedisCache wraps the Redis client with typed operations
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Client returns the underlying Redis client
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.key(key)).Result()
}

// GetJSON retrieves and unmarshals a JSON value from cache
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Set stores a value in cache with optional TTL
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// SetJSON marshals and stores a value in cache
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, string(data), ttl)
}

// Delete removes keys from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixedKeys := make([]string, len(keys))
	for i, k := range keys {
		prefixedKeys[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixedKeys...).Err()
}

// Incr increments an integer value
func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, c.key(key)).Result()
}

// Expire sets a TTL on a key
func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, c.key(key), ttl).Err()
}

// Key construction for domain objects
const (
	keyRunResultPrefix = "run:result:"
	keyLatestRunPrefix = "run:latest:"
	KeyRateLimitPrefix = "rate_limit:"
)

// runResultKey namespaces a cached result by run id
func runResultKey(runID string) string {
	return keyRunResultPrefix + runID
}

// latestRunKey namespaces the latest-result pointer by model and methodology
func latestRunKey(modelID, methodology string) string {
	return keyLatestRunPrefix + modelID + ":" + methodology
}

// CacheRunResult stores a completed run envelope and updates the
// latest-result pointer for its (model, methodology) pair
func (c *RedisCache) CacheRunResult(ctx context.Context, runID, modelID, methodology string, result any, ttl time.Duration) error {
	if err := c.SetJSON(ctx, runResultKey(runID), result, ttl); err != nil {
		return err
	}
	return c.Set(ctx, latestRunKey(modelID, methodology), runID, ttl)
}

// GetRunResult retrieves a cached run envelope by run id
func (c *RedisCache) GetRunResult(ctx context.Context, runID string, dest any) error {
	return c.GetJSON(ctx, runResultKey(runID), dest)
}

// GetLatestRunResult retrieves the most recently cached run envelope for a
// (model, methodology) pair
func (c *RedisCache) GetLatestRunResult(ctx context.Context, modelID, methodology string, dest any) error {
	runID, err := c.Get(ctx, latestRunKey(modelID, methodology))
	if err != nil {
		return err
	}
	return c.GetRunResult(ctx, runID, dest)
}

// InvalidateModel drops the latest-result pointers for a model, used when
// the model snapshot changes
func (c *RedisCache) InvalidateModel(ctx context.Context, modelID string, methodologies ...string) error {
	keys := make([]string, 0, len(methodologies))
	for _, m := range methodologies {
		keys = append(keys, latestRunKey(modelID, m))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Delete(ctx, keys...)
}

// CheckRateLimit checks and increments the rate limit counter.
// Returns (allowed, remaining, resetTime, error).
func (c *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	rateLimitKey := KeyRateLimitPrefix + key

	count, err := c.Incr(ctx, rateLimitKey)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	if count == 1 {
		if err := c.Expire(ctx, rateLimitKey, window); err != nil {
			return false, 0, time.Time{}, err
		}
	}

	ttl, err := c.client.TTL(ctx, c.key(rateLimitKey)).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	resetTime := time.Now().Add(ttl)

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, resetTime, nil
}
