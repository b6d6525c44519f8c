package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"charitytracker/internal/amqp"
	"charitytracker/internal/auth"
	"charitytracker/internal/backend"
	"charitytracker/internal/config"
	apphttp "charitytracker/internal/http"
	"charitytracker/internal/i18n"
	applog "charitytracker/internal/log"
	"charitytracker/internal/middleware/ratelimit"
	"charitytracker/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     cfg.SlogLevel(),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	// AMQP is optional; the ledger works without the mirror.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror events", applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewDonationService(result.Store, publisher)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close resources", applog.FieldError, err)
		}
	}()

	gate, err := auth.NewGate(auth.Options{
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       []byte(cfg.AdminSessionSecret),
		TTL:          cfg.AdminSessionTTL,
	})
	if err != nil {
		return err
	}
	if cfg.AdminSessionSecret == "" {
		logger.Warn("ADMIN_SESSION_SECRET not set, admin sessions end on restart")
	}

	catalog, err := i18n.NewCatalog(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Service:            svc,
		Gate:               gate,
		Catalog:            catalog,
		Logger:             logger,
		Limiter:            limiter,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookies:      cfg.SecureCookies,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting charitytracker server",
			"port", cfg.Port,
			applog.FieldBackend, cfg.DataBackend,
			applog.FieldLocale, catalog.Default().Code)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newLimiter returns a Redis-backed limiter shared across instances when
// REDIS_URL is set and reachable. A nil Allower lets the server use its own
// in-process limiter.
func newLimiter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (ratelimit.Allower, func()) {
	noop := func() {}
	if cfg.RedisURL == "" {
		return nil, noop
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, using in-process rate limiter", applog.FieldError, err)
		return nil, noop
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, using in-process rate limiter", applog.FieldError, err)
		_ = rdb.Close()
		return nil, noop
	}

	logger.Info("Using Redis rate limiter", "requests_per_minute", cfg.RateLimitPerMinute)
	return ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, ""), func() { _ = rdb.Close() }
}
