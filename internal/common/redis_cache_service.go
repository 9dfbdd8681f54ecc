package common

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"skyline/flightsync/internal/logging"
)

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client *redis.Client
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService wraps an existing client
func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{client: client}
}

// Set stores a value in Redis with the given key and duration. Failures are logged, a
// cache write never fails the caller.
func (r *RedisCacheService) Set(ctx context.Context, key string, value []byte, duration time.Duration) {
	if err := r.client.Set(ctx, key, value, duration).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

// Get retrieves a value from Redis by key
func (r *RedisCacheService) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis cache: failed to get key", "key", key, "error", err.Error())
		return nil, false
	}
	return data, true
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logging.Warn("Redis cache: failed to delete key", "key", key, "error", err.Error())
	}
}

// Ping checks the Redis connection
func (r *RedisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
