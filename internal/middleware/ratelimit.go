package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"bank-backend/internal/database"
	"bank-backend/internal/metrics"
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	rateLimitPrefix     = "ratelimit:"
	maxLocalLimiters    = 10000
	rateLimitHeader     = "X-RateLimit-Limit"
	rateRemainingHeader = "X-RateLimit-Remaining"
)

// RateLimiter allows a number of requests per client IP per window. With Redis
// the counter is a fixed window shared by every instance; without it each
// process keeps its own token buckets.
type RateLimiter struct {
	requests int
	window   time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: requests,
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.requests <= 0 || rl.window <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		allowed, remaining := rl.allow(c.Request.Context(), key)

		c.Header(rateLimitHeader, strconv.Itoa(rl.requests))
		if remaining >= 0 {
			c.Header(rateRemainingHeader, strconv.Itoa(remaining))
		}

		if !allowed {
			metrics.RecordRateLimited()
			logger.Log.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString("RequestID")))
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			utils.RespondError(c, utils.NewTooManyRequestsError("too many requests, please try again later"))
			return
		}
		c.Next()
	}
}

// allow reports whether key may proceed and how many requests remain in the
// window, -1 when unknown.
func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, int) {
	if database.RedisClient != nil {
		count, err := rl.incrWindow(ctx, key)
		if err == nil {
			remaining := rl.requests - int(count)
			if remaining < 0 {
				remaining = 0
			}
			return count <= int64(rl.requests), remaining
		}
		logger.Log.Warn("Redis rate limiter unavailable, using local limiter", zap.Error(err))
	}
	return rl.getLimiter(key).Allow(), -1
}

func (rl *RateLimiter) incrWindow(ctx context.Context, key string) (int64, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, bucket)

	pipe := database.RedisClient.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		if len(rl.limiters) >= maxLocalLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		every := rl.window / time.Duration(rl.requests)
		limiter = rate.NewLimiter(rate.Every(every), rl.requests)
		rl.limiters[key] = limiter
	}
	return limiter
}
