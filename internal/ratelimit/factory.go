package ratelimit

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// New selects a limiter backend. "redis" shares state across instances;
// anything else gets the in-process fixed window.
func New(backend string, limit int, window time.Duration, client *redis.Client) Limiter {
	switch backend {
	case "redis":
		if client != nil {
			return NewRedis(client, limit, window)
		}
		return NewMemory(limit, window)
	default:
		return NewMemory(limit, window)
	}
}
