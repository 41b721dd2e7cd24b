package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadportal_backend/internal/auth"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/http/router"
	"leadportal_backend/internal/leads"
	"leadportal_backend/internal/leads/handler"
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg.DatabaseURL, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Shared lead database is optional and owned by the external provider.
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
		log.Info("shared database connection established")
	}

	rdb, err := redisplatform.NewClient(ctx, cfg.RedisURL, cfg.RedisTLSInsecure)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer rdb.Close()
	log.Info("redis connection established")

	val := validator.New()

	var trigger handler.JobTrigger
	schedClient, err := scheduler.NewClient(cfg, log)
	if err != nil {
		log.Warn("job queue disabled", "error", err)
	} else {
		defer func() { _ = schedClient.Close() }()
		trigger = schedClient
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	leadsModule := leads.NewModule(pool, sharedPool, rdb, trigger, cfg.StoreCallTimeout, val, log)

	engine := router.New(cfg, log, db.NewPoolAdapter(pool),
		[]apphttp.Module{authModule, leadsModule}...)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
