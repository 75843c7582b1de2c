package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/middleware"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// auditService runs the night audit: the end-of-day batch that advances
// business time. It never mutates the ledger or bookings directly; every
// per-booking action goes through the booking service's transition
// primitives so audit work obeys the same invariants as interactive calls.
type auditService struct {
	auditRepo   portsrepo.AuditRunRepositoryWithTx
	bookingRepo portsrepo.BookingRepositoryWithTx
	bookingSvc  portssvc.BookingWriterSvc
	graceDays   int
	now         func() time.Time
}

// AuditServiceOption configures optional audit service dependencies.
type AuditServiceOption func(*auditService)

// WithAuditClock overrides the wall clock, mainly for tests.
func WithAuditClock(now func() time.Time) AuditServiceOption {
	return func(s *auditService) {
		s.now = now
	}
}

// NewAuditService creates a new night-audit runner. graceDays widens the
// no-show window: a confirmed booking is only marked no-show once
// arrival + graceDays is strictly before the target date.
func NewAuditService(auditRepo portsrepo.AuditRunRepositoryWithTx, bookingRepo portsrepo.BookingRepositoryWithTx, bookingSvc portssvc.BookingWriterSvc, graceDays int, opts ...AuditServiceOption) portssvc.AuditSvcFacade {
	s := &auditService{
		auditRepo:   auditRepo,
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
		graceDays:   graceDays,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure auditService implements the portssvc.AuditSvcFacade interface
var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// RunAudit executes the night audit for one business date. Re-running a
// completed date returns the existing record untouched; a concurrent run for
// the same date is rejected. Per-booking failures are recorded as outcomes
// and never abort the batch.
func (s *auditService) RunAudit(ctx context.Context, targetDate time.Time) (*domain.AuditRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	target := calendar.Date(targetDate)

	existing, err := s.auditRepo.FindRunsByTargetDate(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to look up audit runs for %s: %w", target.Format(calendar.DateLayout), err)
	}
	for i := range existing {
		switch existing[i].Status {
		case domain.AuditCompleted:
			logger.Info("night audit already completed, returning existing run",
				slog.String("target_date", target.Format(calendar.DateLayout)),
				slog.String("audit_run_id", existing[i].AuditRunID))
			return &existing[i], nil
		case domain.AuditRunning:
			return nil, fmt.Errorf("%w: run %s started at %s",
				apperrors.ErrAuditRunning, existing[i].AuditRunID, existing[i].StartedAt.Format(time.RFC3339))
		}
	}

	run := domain.AuditRun{
		AuditRunID: uuid.NewString(),
		TargetDate: target,
		Status:     domain.AuditRunning,
		StartedAt:  s.now().UTC(),
	}
	if err := s.auditRepo.CreateRun(ctx, run); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Another trigger won the race for this date.
			return nil, fmt.Errorf("%w: target date %s", apperrors.ErrAuditRunning, target.Format(calendar.DateLayout))
		}
		return nil, fmt.Errorf("failed to create audit run: %w", err)
	}

	logger.Info("night audit started",
		slog.String("audit_run_id", run.AuditRunID),
		slog.String("target_date", target.Format(calendar.DateLayout)))

	noShowBefore := target.AddDate(0, 0, -s.graceDays)
	candidates, err := s.bookingRepo.ListAuditCandidates(ctx, noShowBefore, target)
	if err != nil {
		logger.Error("night audit failed to enumerate bookings", slog.String("error", err.Error()))
		return s.finalize(ctx, run, domain.AuditFailed)
	}

	for _, booking := range candidates {
		outcome := s.processBooking(ctx, booking, target)
		run.Outcomes = append(run.Outcomes, outcome)

		if outcome.Error != "" {
			logger.Error("night audit booking action failed",
				slog.String("audit_run_id", run.AuditRunID),
				slog.String("booking_id", outcome.BookingID),
				slog.String("action", string(outcome.Action)),
				slog.String("error", outcome.Error))
		} else {
			logger.Info("night audit booking processed",
				slog.String("audit_run_id", run.AuditRunID),
				slog.String("booking_id", outcome.BookingID),
				slog.String("action", string(outcome.Action)))
		}
	}
	run.ProcessedCount = len(run.Outcomes)

	status := domain.AuditCompleted
	if !run.Succeeded() {
		status = domain.AuditFailed
	}
	return s.finalize(ctx, run, status)
}

// processBooking applies the automatic transition for one booking. Failures
// are isolated into the returned outcome so one corrupt booking cannot block
// reconciliation for the rest of the property.
func (s *auditService) processBooking(ctx context.Context, booking domain.Booking, target time.Time) domain.AuditOutcome {
	outcome := domain.AuditOutcome{BookingID: booking.BookingID}

	var err error
	switch booking.State {
	case domain.StateConfirmed:
		outcome.Action = domain.ActionMarkNoShow
		_, err = s.bookingSvc.MarkNoShow(ctx, booking.BookingID, target)
	case domain.StateCheckedIn:
		outcome.Action = domain.ActionCheckOut
		_, err = s.bookingSvc.CheckOut(ctx, booking.BookingID)
	default:
		err = fmt.Errorf("unexpected audit candidate state %s", booking.State)
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}

// finalize seals the run record. Side effects of already processed bookings
// are retained regardless of the final status; the audit is never rolled back.
func (s *auditService) finalize(ctx context.Context, run domain.AuditRun, status domain.AuditRunStatus) (*domain.AuditRun, error) {
	completedAt := s.now().UTC()
	run.Status = status
	run.CompletedAt = &completedAt

	if err := s.auditRepo.FinalizeRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to finalize audit run %s: %w", run.AuditRunID, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("night audit finished",
		slog.String("audit_run_id", run.AuditRunID),
		slog.String("target_date", run.TargetDate.Format(calendar.DateLayout)),
		slog.String("status", string(run.Status)),
		slog.Int("processed", run.ProcessedCount))
	return &run, nil
}

// GetAuditRun returns the canonical run for a date: the completed one when it
// exists, otherwise the most recent attempt.
func (s *auditService) GetAuditRun(ctx context.Context, targetDate time.Time) (*domain.AuditRun, error) {
	target := calendar.Date(targetDate)
	runs, err := s.auditRepo.FindRunsByTargetDate(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no audit run for %s", apperrors.ErrNotFound, target.Format(calendar.DateLayout))
	}
	for i := range runs {
		if runs[i].Status == domain.AuditCompleted {
			return &runs[i], nil
		}
	}
	return &runs[0], nil
}
