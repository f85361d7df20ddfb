package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler answers liveness checks.
type HealthHandler struct{}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Register wires the health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
}

// Health is a simple root endpoint so we know the service is running.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "clickwall",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
