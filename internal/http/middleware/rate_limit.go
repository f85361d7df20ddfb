package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clickwall/clickwall/internal/metrics"
	"github.com/clickwall/clickwall/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ClientKey derives the rate-limit bucket for a request. Prefers the
// upstream-supplied X-Real-IP header, then the first entry of
// X-Forwarded-For, then the socket address. An unresolvable identity yields a
// degenerate key rather than an error so the gate itself stays available.
func ClientKey(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return c.IP()
}

// RateLimit gates requests through the given limiter. It runs before
// authentication and is independent of it. The rejection message quotes the
// advisory figure, not the enforced ceiling.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := ClientKey(c)

		decision, err := limiter.Check(c.Context(), key)
		if err != nil {
			logger.Error("rate limit backend error", zap.Error(err))
			// Fail open: allow request if the backend is unavailable
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, decision.Remaining)))

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))

			metrics.RateLimited.Inc()
			logger.Warn("rate limit exceeded",
				zap.String("client_key", key),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fmt.Sprintf("Too many clicks! Only %d clicks are allowed every minute.", ratelimit.AdvisoryLimit),
			})
		}

		return c.Next()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
