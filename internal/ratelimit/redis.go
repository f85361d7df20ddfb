package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit"

// RedisLimiter is a fixed-window limiter shared across instances. Keys are
// bucketed by window index, so a window boundary resets every client at once.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedis builds a Redis-backed limiter.
func NewRedis(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Limit() int            { return l.limit }
func (l *RedisLimiter) Window() time.Duration { return l.window }

// Check increments the counter for key's current window bucket. Errors are
// returned to the caller; the middleware fails open on them.
func (l *RedisLimiter) Check(ctx context.Context, key string) (Decision, error) {
	windowSecs := int64(l.window.Seconds())
	bucket := time.Now().Unix() / windowSecs
	redisKey := fmt.Sprintf("%s:%s:%d", redisKeyPrefix, key, bucket)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}

	if count > int64(l.limit) {
		reset := time.Unix((bucket+1)*windowSecs, 0)
		return Decision{Allowed: false, RetryAfter: time.Until(reset)}, nil
	}

	return Decision{Allowed: true, Remaining: l.limit - int(count)}, nil
}
