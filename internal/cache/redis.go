// Package cache keeps the latest sensor reading in Redis so the dashboard's
// current-value polling does not hit SQLite.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ipal-monitor/internal/metrics"
	"ipal-monitor/internal/model"
)

// ErrMiss is returned when no reading is cached.
var ErrMiss = errors.New("cache miss")

const latestReadingKey = "ipal:reading:latest"

// RedisCache wraps a Redis client.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// SetLatest stores r as the latest reading.
func (c *RedisCache) SetLatest(ctx context.Context, r *model.Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	if err := c.client.Set(ctx, latestReadingKey, data, c.ttl).Err(); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to cache reading: %w", err)
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	return nil
}

// WarmLatest stores r only when no reading is cached, so a reading cached by
// a concurrent ingest is never replaced by an older one. It reports whether r was stored.
func (c *RedisCache) WarmLatest(ctx context.Context, r *model.Reading) (bool, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("failed to marshal reading: %w", err)
	}

	ok, err := c.client.SetNX(ctx, latestReadingKey, data, c.ttl).Result()
	if err != nil {
		metrics.CacheOperations.WithLabelValues("warm", "error").Inc()
		return false, fmt.Errorf("failed to warm cache: %w", err)
	}
	metrics.CacheOperations.WithLabelValues("warm", "ok").Inc()
	return ok, nil
}

// Latest returns the cached latest reading, or ErrMiss.
func (c *RedisCache) Latest(ctx context.Context) (*model.Reading, error) {
	data, err := c.client.Get(ctx, latestReadingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, ErrMiss
	}
	if err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to read cached reading: %w", err)
	}

	var r model.Reading
	if err := json.Unmarshal(data, &r); err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to unmarshal cached reading: %w", err)
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return &r, nil
}

// Invalidate drops the cached reading, e.g. after a purge.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, latestReadingKey).Err()
}

// Ping checks that Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
