package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/savorlab/foodstate/compose"
)

// RedisOptions configures the Redis connection and cache behavior.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration

	// TTL is how long cached composition results live. Zero means no expiry;
	// entries are keyed by graph build, so stale builds age out naturally.
	TTL time.Duration

	// Prefix namespaces cache keys. Defaults to "foodstate:compose".
	Prefix string

	// Logger receives cache miss diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// RedisCache stores composition results in Redis. Operations are best-effort:
// any Redis failure is reported as a miss so composition always proceeds.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisCache creates a Redis-backed composition cache with the given options.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}

	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	if opts.Prefix == "" {
		opts.Prefix = "foodstate:compose"
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    opts.TTL,
		prefix: opts.Prefix,
		logger: opts.Logger,
	}, nil
}

// Get returns the cached result for a composition key, if present.
func (c *RedisCache) Get(ctx context.Context, key string) (compose.Result, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return compose.Result{}, false
	}

	var result compose.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("cache entry is not a valid result", "key", key, "error", err)
		return compose.Result{}, false
	}

	return result, true
}

// Set stores a composition result under the given key.
func (c *RedisCache) Set(ctx context.Context, key string, result compose.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to marshal result for cache", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(key string) string {
	return c.prefix + ":" + key
}
