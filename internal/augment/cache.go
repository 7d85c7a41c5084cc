package augment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores augmentation text by key.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing client. Keys are namespaced by prefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// DialRedis parses a redis:// URL and verifies the connection.
func DialRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Cached serves repeated (topic, level) lookups from cache. Cache errors
// are logged and bypassed; empty results are not stored.
type Cached struct {
	inner  Augmenter
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps inner with cache.
func NewCached(inner Augmenter, cache Cache, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl, logger: logger.With("component", "augment")}
}

func (c *Cached) Augment(ctx context.Context, topic, level string) (string, error) {
	key := cacheKey(topic, level)

	if v, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("augment cache get failed", "key", key, "error", err)
	} else if ok {
		return v, nil
	}

	text, err := c.inner.Augment(ctx, topic, level)
	if err != nil || text == "" {
		return text, err
	}

	if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
		c.logger.Warn("augment cache set failed", "key", key, "error", err)
	}
	return text, nil
}

func cacheKey(topic, level string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), "-")) + ":" + strings.ToLower(level)
}

// New builds the augmenter described by cfg: Noop when disabled, the web
// augmenter otherwise, cached in Redis when RedisURL is set. The returned
// close function releases the Redis client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Augmenter, func() error, error) {
	nop := func() error { return nil }
	if !cfg.Enabled {
		return Noop{}, nop, nil
	}

	var a Augmenter = NewWeb(cfg, nil)
	if cfg.RedisURL == "" {
		return a, nop, nil
	}

	client, err := DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nop, err
	}
	return NewCached(a, NewRedisCache(client, "clario:augment:"), cfg.CacheTTL, logger), client.Close, nil
}
