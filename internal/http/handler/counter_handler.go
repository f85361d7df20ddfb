package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clickwall/clickwall/internal/app/repository"
	"github.com/clickwall/clickwall/internal/app/service"
	"github.com/clickwall/clickwall/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const streamHeartbeat = 30 * time.Second

// CounterDeps groups dependencies required by the counter handlers.
type CounterDeps struct {
	Logger   *zap.Logger
	Counters repository.ClickRepository
	Feed     *service.CounterFeed
}

// CounterHandler serves counter snapshots and the live SSE stream.
type CounterHandler struct {
	logger   *zap.Logger
	counters repository.ClickRepository
	feed     *service.CounterFeed
}

// NewCounterHandler creates a counter handler with the provided dependencies.
func NewCounterHandler(deps CounterDeps) *CounterHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterHandler{
		logger:   logger,
		counters: deps.Counters,
		feed:     deps.Feed,
	}
}

// Register wires the counter routes.
func (h *CounterHandler) Register(router fiber.Router, optionalAuth fiber.Handler) {
	api := router.Group("/api")
	api.Get("/counters", optionalAuth, h.Current)
	api.Get("/counters/stream", optionalAuth, h.Stream)
}

// Current handles GET /api/counters. Counters are O(1) projection reads, not
// scans over the event log.
func (h *CounterHandler) Current(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	total, _, err := h.counters.GetGlobalTotal(ctx)
	if err != nil {
		h.logger.Error("failed to read global counter", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read counters",
		})
	}

	resp := fiber.Map{"total": total}

	if userID := middleware.UserID(c); userID != "" {
		count, exists, err := h.counters.GetUserCount(ctx, userID)
		if err != nil {
			h.logger.Error("failed to read user counter", zap.Error(err), zap.String("user_id", userID))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read counters",
			})
		}
		if exists {
			resp["user_count"] = count
		}
	}

	return c.JSON(resp)
}

// Stream handles GET /api/counters/stream: a server-sent-events stream of
// counter snapshots, the global counter always and the viewer's counter when
// authenticated. The feed subscriptions are torn down when the client goes
// away.
func (h *CounterHandler) Stream(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	userID := middleware.UserID(c)

	global, err := h.feed.Subscribe(ctx, service.GlobalTarget())
	if err != nil {
		h.logger.Error("failed to subscribe to global counter", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open counter stream",
		})
	}

	var user *service.Subscription
	if userID != "" {
		user, err = h.feed.Subscribe(ctx, service.UserTarget(userID))
		if err != nil {
			global.Unsubscribe()
			h.logger.Error("failed to subscribe to user counter", zap.Error(err), zap.String("user_id", userID))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to open counter stream",
			})
		}
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer global.Unsubscribe()
		if user != nil {
			defer user.Unsubscribe()
		}

		var userCh <-chan service.Snapshot
		if user != nil {
			userCh = user.C()
		}

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case snap, ok := <-global.C():
				if !ok || !writeEvent(w, snap) {
					return
				}
			case snap, ok := <-userCh:
				if !ok || !writeEvent(w, snap) {
					return
				}
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				if w.Flush() != nil {
					return
				}
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, snap service.Snapshot) bool {
	data, err := json.Marshal(snap)
	if err != nil {
		return false
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	return w.Flush() == nil
}
