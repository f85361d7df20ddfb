package server

import (
	"context"

	"github.com/clickwall/clickwall/internal/app/repository"
	"github.com/clickwall/clickwall/internal/app/service"
	"github.com/clickwall/clickwall/internal/http/handler"
	"github.com/clickwall/clickwall/internal/http/middleware"
	"github.com/clickwall/clickwall/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server needs. The rate limiter is
// constructed once and handed in by reference so it can be tested in
// isolation and swapped for a distributed backend.
type Dependencies struct {
	Logger   *zap.Logger
	NATS     *nats.Conn
	Users    repository.UserRepository
	Clicks   repository.ClickRepository
	Events   repository.ActivityRepository
	Verifier middleware.Verifier
	Tokens   handler.TokenIssuer
	Limiter  ratelimit.Limiter
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app. Tests use it with app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerRoutes() {
	log := s.deps.Logger

	s.app.Use(middleware.Recovery(log))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(log))
	s.app.Use(middleware.CORS())

	var bus service.Bus
	if s.deps.NATS != nil {
		bus = service.NewNATSBus(s.deps.NATS)
	}

	clicks := service.NewClickService(s.deps.Clicks, bus, log)
	activity := service.NewActivityService(s.deps.Events)
	feed := service.NewCounterFeed(bus, s.deps.Clicks, log)

	gate := middleware.RateLimit(s.deps.Limiter, log)
	auth := middleware.RequireAuth(s.deps.Verifier, log)
	optionalAuth := middleware.OptionalAuth(s.deps.Verifier)

	handler.NewHealthHandler().Register(s.app)
	handler.NewUserHandler(handler.UserDeps{
		Logger: log,
		Users:  s.deps.Users,
		Tokens: s.deps.Tokens,
	}).Register(s.app)
	handler.NewClickHandler(handler.ClickDeps{
		Logger: log,
		Clicks: clicks,
	}).Register(s.app, gate, auth)
	handler.NewActivityHandler(handler.ActivityDeps{
		Logger:   log,
		Activity: activity,
	}).Register(s.app, optionalAuth)
	handler.NewCounterHandler(handler.CounterDeps{
		Logger:   log,
		Counters: s.deps.Clicks,
		Feed:     feed,
	}).Register(s.app, optionalAuth)
}
