package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"combinepulse/internal/config"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/infrastructure"
)

const purgeBatch = 200

// RedisCache keeps rendered views in Redis as JSON with a TTL
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return newRedisCache(client, cfg, logger), nil
}

func newRedisCache(client *redis.Client, cfg config.CacheConfig, logger *slog.Logger) *RedisCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = config.DefaultCacheKeyspace
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: infrastructure.WithComponent(logger, "view_cache"),
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns the cached view for key
func (c *RedisCache) Get(ctx context.Context, key string) (*dashboard.View, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached view: %w", err)
	}

	var view dashboard.View
	if err := json.Unmarshal(data, &view); err != nil {
		// a corrupt entry is treated as a miss and dropped
		c.logger.WarnContext(ctx, "dropping unreadable cached view", "key", key, "error", err)
		_ = c.client.Del(ctx, c.key(key)).Err()
		return nil, false, nil
	}
	return &view, true, nil
}

// Set stores view under key with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, view *dashboard.View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached view: %w", err)
	}
	return nil
}

// Purge deletes every key under the cache prefix
func (c *RedisCache) Purge(ctx context.Context) (int64, error) {
	var deleted int64
	iter := c.client.Scan(ctx, 0, c.prefix+":*", purgeBatch).Iterator()

	batch := make([]string, 0, purgeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return deleted, fmt.Errorf("purge cached views: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan cached views: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, fmt.Errorf("purge cached views: %w", err)
	}

	c.logger.InfoContext(ctx, "view cache purged", "deleted", deleted)
	return deleted, nil
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
