package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/park-bookings/internal/adapters/redis"
	"github.com/robertarktes/park-bookings/internal/observability"
)

// RateLimiter is a fixed-window counter per key kept in Redis.
type RateLimiter struct {
	redis  *redisadapter.Cache
	rate   int
	period time.Duration
	logger observability.Logger
}

func NewRateLimiter(redis *redisadapter.Cache, rate int, period time.Duration, logger observability.Logger) *RateLimiter {
	return &RateLimiter{redis: redis, rate: rate, period: period, logger: logger}
}

// Allow counts one request for key. Requests are let through when Redis is
// unreachable.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, rl.period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		rl.logger.WithError(err).Warn("rate limit check failed")
		return true
	}

	if incr.Val() > int64(rl.rate) {
		observability.RateLimitExceeded.Inc()
		return false
	}
	return true
}
