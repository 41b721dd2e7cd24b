package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadportal_backend/internal/email"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	svc    *service.Service
	feed   service.BookingSource // nil when booking import is disabled
	mailer email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, svc *service.Service, feed service.BookingSource, mailer email.Sender, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	if mailer == nil {
		mailer = email.NopSender{}
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		svc:    svc,
		feed:   feed,
		mailer: mailer,
		log:    log,
	}

	mux.HandleFunc(TaskLeadsReconcile, w.handleReconcile)
	mux.HandleFunc(TaskBookingImport, w.handleBookingImport)

	return w, nil
}

// handleReconcile runs a duplicate-detection pass. A pass that marked some
// leads but failed on others is considered done: the failures are logged and
// reported by mail, and the next pass picks them up. Only a total failure is
// returned for asynq to retry.
func (w *Worker) handleReconcile(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcilePayload(task)
	if err != nil {
		return err
	}

	w.log.Info("reconciliation pass started", "scope", payload.ScopeLabel)

	marked, err := w.svc.DetectAndMark(ctx, payload.ScopeLabel)
	if err == nil {
		w.log.Info("reconciliation pass complete", "marked", marked)
		return nil
	}

	var partial *service.PartialFailureError
	if !errors.As(err, &partial) {
		return err
	}

	failedIDs := make([]int64, 0, len(partial.Failures))
	for _, failure := range partial.Failures {
		failedIDs = append(failedIDs, failure.LeadID)
		w.log.Warn("lead skipped during reconciliation",
			"leadId", failure.LeadID,
			"error", failure.Err,
		)
	}

	report := email.ReconcileReport{
		RanAt:     time.Now(),
		Scope:     payload.ScopeLabel,
		Marked:    partial.Marked,
		FailedIDs: failedIDs,
	}
	if err := w.mailer.SendReconcileReport(ctx, report); err != nil {
		w.log.Warn("failed to send reconciliation report", "error", err)
	}

	return nil
}

func (w *Worker) handleBookingImport(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseBookingImportPayload(task); err != nil {
		return err
	}

	if w.feed == nil {
		w.log.Warn("booking import requested but no feed is configured")
		return nil
	}

	matched, err := w.svc.ImportBooked(ctx, w.feed)
	if err != nil {
		return err
	}

	w.log.Info("booking import finished", "matched", matched)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
