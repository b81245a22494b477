// internal/services/matchscore/cache.go
package matchscore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed scores. Entries never expire: profile or job edits
// do not invalidate a score once it is written.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// RedisCache backs the score cache with Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
