package services

import (
	"context"
	"errors"
	"time"

	"bank-backend/internal/database"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

// AddToDenylist revokes a token until it would have expired anyway.
// Without Redis revocation is not tracked.
func AddToDenylist(ctx context.Context, tokenString string, expiration time.Duration) error {
	if database.RedisClient == nil || expiration <= 0 {
		return nil
	}
	key := denylistPrefix + tokenString
	return database.RedisClient.Set(ctx, key, 1, expiration).Err()
}

func IsDenylisted(ctx context.Context, tokenString string) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	key := denylistPrefix + tokenString
	val, err := database.RedisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val != "", nil
}
