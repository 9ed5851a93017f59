package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores query responses in Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisCache
type RedisOption func(*redis.Options)

// WithPassword sets the Redis AUTH password
func WithPassword(password string) RedisOption {
	return func(o *redis.Options) {
		o.Password = password
	}
}

// WithDB selects the Redis logical database
func WithDB(db int) RedisOption {
	return func(o *redis.Options) {
		o.DB = db
	}
}

// NewRedisCache connects to addr and checks the connection.
// Every key is stored under prefix.
func NewRedisCache(ctx context.Context, addr, prefix string, options ...RedisOption) (*RedisCache, error) {
	opts := &redis.Options{Addr: addr}
	for _, option := range options {
		option(opts)
	}

	client := redis.NewClient(opts)
	if res, err := client.Ping(ctx).Result(); err != nil || res != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("could not check Redis server: %w", err)
	}

	return &RedisCache{client: client, prefix: prefix}, nil
}

// Get implements common.Cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not read cache entry: %w", err)
	}
	return value, true, nil
}

// Set implements common.Cache
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("could not write cache entry: %w", err)
	}
	return nil
}

// DeletePrefix implements common.Cache
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.prefix+prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("could not scan cache entries: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("could not delete cache entries: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
