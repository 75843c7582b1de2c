package services

import (
	"context"
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
)

// AuditSvcFacade runs and inspects night-audit batches.
type AuditSvcFacade interface {
	// RunAudit executes the night audit for the target business date. A
	// Completed run for the date is returned as-is (idempotence); a Running
	// run fails with apperrors.ErrAuditRunning. Per-booking failures are
	// captured in the run's outcomes, never propagated to the caller.
	RunAudit(ctx context.Context, targetDate time.Time) (*domain.AuditRun, error)

	// GetAuditRun returns the canonical run for the date: the Completed run
	// when one exists, otherwise the most recent attempt.
	GetAuditRun(ctx context.Context, targetDate time.Time) (*domain.AuditRun, error)
}
