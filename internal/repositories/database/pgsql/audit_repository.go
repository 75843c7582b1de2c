package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	"github.com/innkeep/pms_backend/internal/models"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/innkeep/pms_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

type PgxAuditRunRepository struct {
	BaseRepository
}

// newPgxAuditRunRepository creates a new repository for night-audit run data.
func newPgxAuditRunRepository(pool *pgxpool.Pool) portsrepo.AuditRunRepositoryWithTx {
	return &PgxAuditRunRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAuditRunRepository implements portsrepo.AuditRunRepositoryWithTx
var _ portsrepo.AuditRunRepositoryWithTx = (*PgxAuditRunRepository)(nil)

// CreateRun inserts a new RUNNING run. Partial unique indexes on
// (target_date) WHERE status = 'RUNNING' / 'COMPLETED' make the single-flight
// and idempotence invariants hold under races; collisions surface as
// apperrors.ErrDuplicate.
func (r *PgxAuditRunRepository) CreateRun(ctx context.Context, run domain.AuditRun) error {
	m := mapping.ToModelAuditRun(run)
	query := `
		INSERT INTO audit_runs (audit_run_id, target_date, status, started_at, completed_at, processed_count)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query, m.AuditRunID, m.TargetDate, m.Status, m.StartedAt, m.CompletedAt, m.ProcessedCount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: audit run for %s", apperrors.ErrDuplicate, run.TargetDate.Format(calendar.DateLayout))
		}
		return fmt.Errorf("failed to insert audit run %s: %w", m.AuditRunID, err)
	}
	return nil
}

// FinalizeRun writes the run's terminal status and outcomes in one transaction.
func (r *PgxAuditRunRepository) FinalizeRun(ctx context.Context, run domain.AuditRun) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelAuditRun(run)
	updateQuery := `
		UPDATE audit_runs
		SET status = $1, completed_at = $2, processed_count = $3
		WHERE audit_run_id = $4 AND status = $5;
	`
	tag, err := tx.Exec(ctx, updateQuery, m.Status, m.CompletedAt, m.ProcessedCount, m.AuditRunID, models.AuditRunStatus(domain.AuditRunning))
	if err != nil {
		return fmt.Errorf("failed to finalize audit run %s: %w", m.AuditRunID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("audit run %s is not running, cannot finalize", m.AuditRunID)
	}

	batch := &pgx.Batch{}
	outcomeQuery := `
		INSERT INTO audit_run_outcomes (audit_run_id, booking_id, action, error)
		VALUES ($1, $2, $3, $4);
	`
	for _, o := range mapping.ToModelAuditOutcomes(run) {
		batch.Queue(outcomeQuery, o.AuditRunID, o.BookingID, o.Action, o.Error)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert audit outcomes for run %s: %w", m.AuditRunID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindRunsByTargetDate returns every recorded run for the date, most recent
// first, with outcomes attached.
func (r *PgxAuditRunRepository) FindRunsByTargetDate(ctx context.Context, targetDate time.Time) ([]domain.AuditRun, error) {
	runQuery := `
		SELECT audit_run_id, target_date, status, started_at, completed_at, processed_count
		FROM audit_runs
		WHERE target_date = $1
		ORDER BY started_at DESC;
	`
	rows, err := r.Pool.Query(ctx, runQuery, calendar.Date(targetDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit runs: %w", err)
	}

	var ms []models.AuditRun
	for rows.Next() {
		var m models.AuditRun
		if err := rows.Scan(&m.AuditRunID, &m.TargetDate, &m.Status, &m.StartedAt, &m.CompletedAt, &m.ProcessedCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan audit run: %w", err)
		}
		ms = append(ms, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading audit runs: %w", err)
	}

	runs := make([]domain.AuditRun, 0, len(ms))
	for _, m := range ms {
		outcomes, err := r.findOutcomes(ctx, m.AuditRunID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, mapping.ToDomainAuditRun(m, outcomes))
	}
	return runs, nil
}

func (r *PgxAuditRunRepository) findOutcomes(ctx context.Context, auditRunID string) ([]models.AuditRunOutcome, error) {
	query := `
		SELECT audit_run_id, booking_id, action, error
		FROM audit_run_outcomes
		WHERE audit_run_id = $1
		ORDER BY booking_id;
	`
	rows, err := r.Pool.Query(ctx, query, auditRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit outcomes for run %s: %w", auditRunID, err)
	}
	defer rows.Close()

	var outcomes []models.AuditRunOutcome
	for rows.Next() {
		var o models.AuditRunOutcome
		if err := rows.Scan(&o.AuditRunID, &o.BookingID, &o.Action, &o.Error); err != nil {
			return nil, fmt.Errorf("failed to scan audit outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading audit outcomes: %w", err)
	}
	return outcomes, nil
}
