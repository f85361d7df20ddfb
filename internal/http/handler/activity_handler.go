package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/clickwall/clickwall/internal/app/service"
	"github.com/clickwall/clickwall/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ActivityDeps groups dependencies required by the activity handler.
type ActivityDeps struct {
	Logger   *zap.Logger
	Activity service.ActivityService
}

// ActivityHandler serves the time-bucketed dashboard series.
type ActivityHandler struct {
	logger   *zap.Logger
	activity service.ActivityService
}

// NewActivityHandler creates an activity handler with the provided dependencies.
func NewActivityHandler(deps ActivityDeps) *ActivityHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityHandler{
		logger:   logger,
		activity: deps.Activity,
	}
}

// Register wires the activity route. Auth is optional: an anonymous viewer
// gets the total series only.
func (h *ActivityHandler) Register(router fiber.Router, optionalAuth fiber.Handler) {
	api := router.Group("/api")
	api.Get("/activity", optionalAuth, h.Series)
}

// Series handles GET /api/activity?hours=N&tz=Area/City.
func (h *ActivityHandler) Series(c *fiber.Ctx) error {
	hours := service.DefaultWindowHours
	if raw := c.Query("hours"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			hours = parsed // out-of-range values are clamped by the service
		}
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	series, err := h.activity.BuildSeries(ctx, hours, middleware.UserID(c), requestLocation(c))
	if err != nil {
		h.logger.Error("failed to build activity series", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build activity series",
		})
	}

	return c.JSON(series)
}

// requestLocation resolves the viewer's timezone from the tz query parameter.
// Unknown or absent names fall back to UTC.
func requestLocation(c *fiber.Ctx) *time.Location {
	name := c.Query("tz")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
