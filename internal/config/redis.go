package config

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisClient متغیر برای دسترسی به Redis
var RedisClient *redis.Client

// InitRedis اتصال به Redis را راه‌اندازی می‌کند.
// An empty REDIS_ADDR disables the feed index and returns a nil client.
func InitRedis(ctx context.Context, s *Settings) (*redis.Client, error) {
	if s.RedisAddr == "" {
		Logger.Info("REDIS_ADDR is not set, feed index disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	})

	// بررسی اتصال به Redis
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", s.RedisAddr, err)
	}

	RedisClient = client
	Logger.Info("Connected to Redis", zap.String("addr", s.RedisAddr), zap.String("ping", pong))
	return client, nil
}
