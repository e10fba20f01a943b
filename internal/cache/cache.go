package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores generated AI text keyed by prompt hash.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Health(ctx context.Context) error
	Close() error
}

// RedisCache wraps a redis client.
type RedisCache struct {
	redisClient *redis.Client
	prefix      string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{redisClient: client, prefix: prefix}
}

// Connect dials redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.redisClient.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.redisClient.Set(ctx, c.prefix+key, value, expiration).Err()
}

func (c *RedisCache) Health(ctx context.Context) error {
	return c.redisClient.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.redisClient.Close()
}

// NopCache never stores anything; used when redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (NopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (NopCache) Health(context.Context) error                             { return nil }
func (NopCache) Close() error                                             { return nil }
