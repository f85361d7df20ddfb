package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserIDKey is the locals key carrying the verified user identity.
const UserIDKey = "user_id"

// Verifier validates a bearer credential and yields the verified user ID.
// Token verification is delegated to it; the handlers trust what it returns.
type Verifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified user ID in request locals.
func RequireAuth(verifier Verifier, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication token required",
			})
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			logger.Warn("token verification failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// OptionalAuth verifies a bearer token when one is present but never rejects.
// Used by read endpoints that enrich their response for a known viewer.
func OptionalAuth(verifier Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if userID, err := verifier.Verify(token); err == nil {
				c.Locals(UserIDKey, userID)
			}
		}
		return c.Next()
	}
}

// UserID returns the verified identity stored by RequireAuth or OptionalAuth,
// or the empty string.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDKey).(string); ok {
		return v
	}
	return ""
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
