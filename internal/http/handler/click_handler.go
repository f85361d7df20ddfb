package handler

import (
	"context"

	"github.com/clickwall/clickwall/internal/app/service"
	"github.com/clickwall/clickwall/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Boundary messages; each failure maps to exactly one of them.
const (
	successMessage          = "clicks updated successfully"
	failMessage             = "failed to update clicks"
	unauthorizedMessage     = "unauthorized"
	methodNotAllowedMessage = "method not allowed"
)

// ClickDeps groups dependencies required by the click handler.
type ClickDeps struct {
	Logger *zap.Logger
	Clicks service.ClickService
}

// ClickHandler implements the click submission endpoint.
type ClickHandler struct {
	logger *zap.Logger
	clicks service.ClickService
}

// NewClickHandler creates a click handler with the provided dependencies.
func NewClickHandler(deps ClickDeps) *ClickHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickHandler{
		logger: logger,
		clicks: deps.Clicks,
	}
}

// Register wires the click route. The rate gate is applied ahead of the auth
// guard so admission control runs independent of authentication; the All
// route answers every other verb with 405.
func (h *ClickHandler) Register(router fiber.Router, gate fiber.Handler, auth fiber.Handler) {
	api := router.Group("/api")
	api.Post("/clicks", gate, auth, h.Submit)
	api.All("/clicks", h.MethodNotAllowed)
}

// Submit handles POST /api/clicks.
func (h *ClickHandler) Submit(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": unauthorizedMessage,
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := h.clicks.Apply(ctx, userID)
	if err != nil {
		h.logger.Error("failed to update clicks", zap.Error(err), zap.String("user_id", userID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": failMessage,
		})
	}

	return c.JSON(fiber.Map{
		"message":    successMessage,
		"user_count": result.UserCount,
		"total":      result.GlobalTotal,
	})
}

// MethodNotAllowed answers any verb other than POST on the click endpoint.
func (h *ClickHandler) MethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
		"error": methodNotAllowedMessage,
	})
}
