package common

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process cache used when Redis is disabled
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpirationSeconds, cleanUpIntervalSeconds int) *CacheService {
	defaultExpiration := time.Duration(defaultExpirationSeconds) * time.Second
	cleanUpInterval := time.Duration(cleanUpIntervalSeconds) * time.Second
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c}
}

func (cs *CacheService) Set(_ context.Context, key string, value []byte, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(_ context.Context, key string) ([]byte, bool) {
	val, found := cs.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

func (cs *CacheService) Delete(_ context.Context, key string) {
	cs.cache.Delete(key)
}

// Ping always succeeds for the in-memory cache
func (cs *CacheService) Ping(context.Context) error {
	return nil
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
