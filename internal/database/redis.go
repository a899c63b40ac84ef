package database

import (
	"context"

	"bank-backend/config"

	"github.com/go-redis/redis/v8"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis connects to Redis when it is configured. A nil client means the
// cache, token denylist and shared rate limiter are disabled.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}

	RedisClient = client
	return client, nil
}
