package repositories

import (
	"context"
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
)

// AuditRunReader defines read operations for night-audit runs
type AuditRunReader interface {
	// FindRunsByTargetDate returns every recorded run for the target date,
	// most recent first, outcomes included.
	FindRunsByTargetDate(ctx context.Context, targetDate time.Time) ([]domain.AuditRun, error)
}

// AuditRunWriter defines write operations for night-audit runs
type AuditRunWriter interface {
	// CreateRun inserts a new RUNNING run. The store enforces at most one
	// RUNNING and at most one COMPLETED run per target date; a collision
	// fails with apperrors.ErrDuplicate.
	CreateRun(ctx context.Context, run domain.AuditRun) error

	// FinalizeRun writes the run's terminal status, completion time, processed
	// count and per-booking outcomes in one transaction.
	FinalizeRun(ctx context.Context, run domain.AuditRun) error
}

// AuditRunRepositoryFacade combines all audit-run repository interfaces
type AuditRunRepositoryFacade interface {
	AuditRunReader
	AuditRunWriter
}

// AuditRunRepositoryWithTx extends AuditRunRepositoryFacade with transaction capabilities
type AuditRunRepositoryWithTx interface {
	AuditRunRepositoryFacade
	TransactionManager
}
