package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadportal_backend/internal/adapters"
	"leadportal_backend/internal/email"
	"leadportal_backend/internal/leads"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"
	redisplatform "leadportal_backend/platform/redis"
	"leadportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var sharedPool *pgxpool.Pool
	if cfg.SharedDatabaseURL != "" {
		if err := withRetry(ctx, log, "shared database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg.SharedDatabaseURL)
			if err != nil {
				return err
			}
			sharedPool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to shared database", "error", err)
			panic("failed to connect to shared database: " + err.Error())
		}
		defer sharedPool.Close()
	}

	rdb, err := redisplatform.NewClient(ctx, cfg.RedisURL, cfg.RedisTLSInsecure)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer rdb.Close()

	val := validator.New()

	// Worker-side status engine wiring (no HTTP handlers required).
	leadsModule := leads.NewModule(pool, sharedPool, rdb, nil, cfg.StoreCallTimeout, val, log)

	var feed service.BookingSource
	bookingFeed, err := adapters.NewBookingFeed(cfg)
	if err != nil {
		log.Error("failed to initialize booking feed", "error", err)
		panic("failed to initialize booking feed: " + err.Error())
	}
	if bookingFeed != nil {
		feed = bookingFeed
	} else {
		log.Warn("booking feed not configured; booking imports disabled")
	}

	mailer := email.NewSender(cfg)

	schedClient, err := scheduler.NewClient(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = schedClient.Close() }()

	reconciler := scheduler.NewPeriodicReconciler(schedClient, log, cfg.ReconcileInterval)
	go reconciler.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), feed, mailer, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
