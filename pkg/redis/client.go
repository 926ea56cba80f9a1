package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/nerakcos/storefront-api/pkg/global"
)

// NewClient builds the process-wide Redis client. The caller owns it and
// closes it at shutdown.
func NewClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		Password: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       0,
		Protocol: 2,
	})
}
