package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/middleware"
	"github.com/innkeep/pms_backend/internal/platform/config"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// Scheduler triggers the night audit once per business day. The audit service
// itself enforces single-flight and idempotence, so a duplicate or late
// trigger is harmless.
type Scheduler struct {
	cron     *cron.Cron
	auditSvc portssvc.AuditSvcFacade
	cfg      *config.Config
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for the configured audit cron expression.
func NewScheduler(cfg *config.Config, auditSvc portssvc.AuditSvcFacade, logger *slog.Logger) (*Scheduler, error) {
	// Seconds precision, UTC. The cutover math assumes UTC wall clock.
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:     c,
		auditSvc: auditSvc,
		cfg:      cfg,
		logger:   logger,
	}

	if _, err := c.AddFunc(cfg.NightAuditCron, s.runNightAudit); err != nil {
		return nil, err
	}
	return s, nil
}

// runNightAudit closes the business date that just ended: at the cutover
// instant the business date rolls forward, so the date to reconcile is the
// previous one.
func (s *Scheduler) runNightAudit() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Night audit job panicked", slog.Any("panic", r))
		}
	}()

	targetDate := calendar.BusinessDate(time.Now(), s.cfg.BusinessDayCutover).AddDate(0, 0, -1)
	ctx := middleware.AddLoggerToCtx(context.Background(), s.logger)

	s.logger.Info("Scheduled night audit triggered",
		slog.String("target_date", targetDate.Format(calendar.DateLayout)))

	run, err := s.auditSvc.RunAudit(ctx, targetDate)
	if err != nil {
		s.logger.Error("Scheduled night audit failed",
			slog.String("target_date", targetDate.Format(calendar.DateLayout)),
			slog.String("error", err.Error()))
		return
	}

	s.logger.Info("Scheduled night audit finished",
		slog.String("audit_run_id", run.AuditRunID),
		slog.String("status", string(run.Status)),
		slog.Int("processed", run.ProcessedCount))
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Night audit scheduler started", slog.String("cron", s.cfg.NightAuditCron))
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Night audit scheduler stopped")
}
