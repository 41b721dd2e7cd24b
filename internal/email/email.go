// Package email sends operational report mail. It is config-gated: when no
// SMTP settings are present, the nop sender is used and reports are dropped.
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadportal_backend/platform/config"
)

// ReconcileReport summarizes a duplicate-detection pass that completed with
// per-lead failures.
type ReconcileReport struct {
	RanAt     time.Time
	Scope     string
	Marked    int
	FailedIDs []int64
}

// Sender delivers operational reports.
type Sender interface {
	SendReconcileReport(ctx context.Context, report ReconcileReport) error
}

// NewSender returns the configured sender, or a nop sender when email is
// disabled or the ops address is missing.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetOpsEmailAddress() == "" || cfg.GetSMTPHost() == "" {
		return NopSender{}
	}
	return NewSMTPSender(cfg)
}

// NopSender drops all reports.
type NopSender struct{}

func (NopSender) SendReconcileReport(context.Context, ReconcileReport) error {
	return nil
}

func renderReconcileReport(report ReconcileReport) (subject, body string) {
	scope := report.Scope
	if scope == "" {
		scope = "all vendors"
	}

	ids := make([]string, 0, len(report.FailedIDs))
	for _, id := range report.FailedIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}

	subject = fmt.Sprintf("Lead reconciliation finished with %d failures", len(report.FailedIDs))
	body = fmt.Sprintf(
		"Duplicate detection ran at %s (scope: %s).\n\nMarked: %d\nFailed lead IDs: %s\n\nFailed leads keep their previous overlay state and will be retried on the next pass.\n",
		report.RanAt.Format(time.RFC3339), scope, report.Marked, strings.Join(ids, ", "),
	)
	return subject, body
}
