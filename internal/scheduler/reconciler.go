package scheduler

import (
	"context"
	"time"

	"leadportal_backend/platform/logger"
)

const defaultReconcileInterval = time.Hour

// PeriodicReconciler enqueues a full reconciliation pass on a fixed interval.
// Task uniqueness in the client keeps overlapping triggers (manual or from a
// second replica) from stacking up.
type PeriodicReconciler struct {
	client   *Client
	log      *logger.Logger
	interval time.Duration
}

func NewPeriodicReconciler(client *Client, log *logger.Logger, interval time.Duration) *PeriodicReconciler {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}

	return &PeriodicReconciler{
		client:   client,
		log:      log,
		interval: interval,
	}
}

func (r *PeriodicReconciler) Run(ctx context.Context) {
	if r == nil || r.client == nil {
		return
	}

	r.enqueue(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.enqueue(ctx)
		}
	}
}

func (r *PeriodicReconciler) enqueue(ctx context.Context) {
	queued, err := r.client.EnqueueReconcile(ctx, "", "periodic")
	if err != nil {
		r.log.Warn("failed to enqueue periodic reconciliation", "error", err)
		return
	}
	if !queued {
		r.log.Info("periodic reconciliation skipped, pass already pending")
	}
}
