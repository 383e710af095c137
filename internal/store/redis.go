package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/models"
)

const keyPrefix = "autojobfinder:seen"

// RedisStore is a SeenStore shared between hosts. Keys expire after the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger types.Logger
}

// NewRedisStore parses redisURL and verifies connectivity
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration, logger types.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Connected to Redis seen-listing store", map[string]interface{}{
		"addr": opts.Addr,
		"db":   opts.DB,
		"ttl":  ttl.String(),
	})

	return &RedisStore{client: client, ttl: ttl, logger: logger}, nil
}

func (r *RedisStore) Seen(ctx context.Context, key models.ListingKey) (bool, error) {
	n, err := r.client.Exists(ctx, seenKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen listing: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) MarkSeen(ctx context.Context, keys ...models.ListingKey) error {
	if len(keys) == 0 {
		return nil
	}

	now := time.Now().Unix()
	pipe := r.client.Pipeline()
	for _, key := range keys {
		pipe.Set(ctx, seenKey(key), now, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to record seen listings", map[string]interface{}{
			"count": len(keys),
			"error": err.Error(),
		})
		return fmt.Errorf("failed to record seen listings: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// seenKey generates the Redis key for a listing
func seenKey(key models.ListingKey) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, key.Platform.Slug(), key.URL)
}
