// Package scheduler runs the background side of the status engine: the asynq
// client and worker for reconciliation and booking-import jobs, plus the
// ticker that enqueues the periodic reconciliation pass.
package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client  *asynq.Client
	queue   string
	lockTTL time.Duration
	log     *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	lockTTL := cfg.GetReconcileLockTTL()
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}

	return &Client{
		client:  asynq.NewClient(opt),
		queue:   queue,
		lockTTL: lockTTL,
		log:     log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueReconcile queues a duplicate-detection pass. The task is unique per
// scope for the lock TTL regardless of who triggered it, so at most one pass
// per scope is queued or running at a time; a suppressed enqueue returns
// (false, nil). triggeredBy is recorded in the log only.
func (c *Client) EnqueueReconcile(ctx context.Context, scopeLabel, triggeredBy string) (bool, error) {
	if c == nil || c.client == nil {
		return false, fmt.Errorf("scheduler client not configured")
	}

	task, err := NewReconcileTask(ReconcilePayload{ScopeLabel: scopeLabel})
	if err != nil {
		return false, err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.Unique(c.lockTTL))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	c.log.Info("reconciliation pass enqueued", "scope", scopeLabel, "triggeredBy", triggeredBy)
	return true, nil
}

// EnqueueBookingImport queues a booking import pass with the same uniqueness
// window as reconciliation.
func (c *Client) EnqueueBookingImport(ctx context.Context, triggeredBy string) (bool, error) {
	if c == nil || c.client == nil {
		return false, fmt.Errorf("scheduler client not configured")
	}

	task, err := NewBookingImportTask(BookingImportPayload{})
	if err != nil {
		return false, err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.Unique(c.lockTTL))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	c.log.Info("booking import enqueued", "triggeredBy", triggeredBy)
	return true, nil
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
