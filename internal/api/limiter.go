package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter combines a process-wide token bucket with a per-user
// fixed window counter kept in Redis. When Redis is down or absent the
// per-user check fails open; the global bucket still applies.
type RateLimiter struct {
	global *rate.Limiter
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(rps float64, burst int, client *redis.Client, limit int, window time.Duration) *RateLimiter {
	var global *rate.Limiter
	if rps > 0 {
		global = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimiter{
		global: global,
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether the request may proceed. The returned error is
// advisory; a non-nil error always comes with allowed=true.
func (l *RateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if l.global != nil && !l.global.Allow() {
		return false, nil
	}

	if l.client == nil || l.limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:%s", userID)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return true, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return count <= int64(l.limit), nil
}
