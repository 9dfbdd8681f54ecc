package common

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"skyline/flightsync/internal/logging"
)

// NewRedisClient creates a pooled Redis client and pings it once
func NewRedisClient(addr, password string) *redis.Client {
	logging.Info("Initializing Redis client", "addr", addr, "db", 0)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Still return the client, the connection pool will try to reconnect
		logging.Error("Failed to ping Redis", "addr", addr, "error", err.Error())
		return client
	}

	logging.Info("Connected to Redis", "addr", addr)
	return client
}
