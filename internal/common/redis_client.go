package common

import (
	"context"
	"time"

	"civic-engagement/missionhub/internal/logging"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a pooled Redis client. A failed ping is logged, not fatal:
// the pool keeps reconnecting.
func NewRedisClient(addr, password string) *redis.Client {
	logging.Info("[Redis] Initializing Redis client", "addr", addr)

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
		logging.Error("[Redis] Failed to ping Redis", "error", err)
		return client
	}

	logging.Info("[Redis] Successfully connected to Redis")
	return client
}
