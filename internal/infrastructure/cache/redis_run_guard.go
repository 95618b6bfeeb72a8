package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erp/contracts/internal/infrastructure/config"
)

// RedisRunGuard implements the run guard on Redis. Acquire relies on
// SetNX so only one caller can hold a given key until the TTL expires
// or the key is released.
type RedisRunGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRunGuard creates a Redis-backed run guard and verifies connectivity
func NewRedisRunGuard(cfg *config.RedisConfig) (*RedisRunGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRunGuard{
		client:    client,
		keyPrefix: "runguard:",
	}, nil
}

// Acquire tries to take the lock for key. Returns false when another
// run already holds it.
func (g *RedisRunGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run guard %s: %w", key, err)
	}
	return ok, nil
}

// Release frees the lock for key
func (g *RedisRunGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release run guard %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis connection
func (g *RedisRunGuard) Close() error {
	return g.client.Close()
}
