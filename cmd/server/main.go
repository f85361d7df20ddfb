package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/clickwall/clickwall/config"
	appmodel "github.com/clickwall/clickwall/internal/app/model"
	apprepository "github.com/clickwall/clickwall/internal/app/repository"
	appserver "github.com/clickwall/clickwall/internal/app/server"
	httputil "github.com/clickwall/clickwall/internal/http/util"
	"github.com/clickwall/clickwall/internal/infra/logger"
	infraNATS "github.com/clickwall/clickwall/internal/infra/nats"
	infraPostgres "github.com/clickwall/clickwall/internal/infra/postgres"
	infraPrometheus "github.com/clickwall/clickwall/internal/infra/prometheus"
	infraRedis "github.com/clickwall/clickwall/internal/infra/redis"
	"github.com/clickwall/clickwall/internal/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_user", cfg.Postgres.User),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.String("ratelimit_backend", cfg.RateLimit.Backend),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.User{}, &appmodel.GlobalCounter{}, &appmodel.ClickEvent{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	var redisClient *redis.Client
	if cfg.RateLimit.Backend == "redis" {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("Connected to Redis successfully")
	}

	natsConn, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully")

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	users := apprepository.NewUserRepository(gormDB)
	clicks := apprepository.NewClickRepository(gormDB)
	events := apprepository.NewActivityRepository(pool)

	if err := clicks.EnsureGlobalCounter(ctx); err != nil {
		log.Fatal("Failed to seed global counter", zap.Error(err))
	}

	limiter := ratelimit.New(cfg.RateLimit.Backend, cfg.RateLimit.Limit,
		cfg.RateLimit.WindowDuration(), redisClient)
	if mem, ok := limiter.(*ratelimit.MemoryLimiter); ok {
		mem.StartJanitor(ctx)
	}

	verifier := httputil.NewTokenSigner([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTLDuration())

	server := appserver.New(appserver.Dependencies{
		Logger:   log,
		NATS:     natsConn,
		Users:    users,
		Clicks:   clicks,
		Events:   events,
		Verifier: verifier,
		Tokens:   verifier,
		Limiter:  limiter,
	})

	port := cfg.App.Port
	if port == 0 {
		port = 8080
	}
	if err := server.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
