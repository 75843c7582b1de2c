package mapping

import (
	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/models"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// ToModelAuditRun converts a domain AuditRun to its row shape (outcomes are
// persisted separately).
func ToModelAuditRun(d domain.AuditRun) models.AuditRun {
	return models.AuditRun{
		AuditRunID:     d.AuditRunID,
		TargetDate:     d.TargetDate,
		Status:         models.AuditRunStatus(d.Status),
		StartedAt:      d.StartedAt,
		CompletedAt:    d.CompletedAt,
		ProcessedCount: d.ProcessedCount,
	}
}

// ToDomainAuditRun converts a model AuditRun and its outcome rows to a domain AuditRun.
func ToDomainAuditRun(m models.AuditRun, outcomes []models.AuditRunOutcome) domain.AuditRun {
	run := domain.AuditRun{
		AuditRunID:     m.AuditRunID,
		TargetDate:     calendar.Date(m.TargetDate),
		Status:         domain.AuditRunStatus(m.Status),
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
		ProcessedCount: m.ProcessedCount,
		Outcomes:       make([]domain.AuditOutcome, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		run.Outcomes = append(run.Outcomes, domain.AuditOutcome{
			BookingID: o.BookingID,
			Action:    domain.AuditAction(o.Action),
			Error:     o.Error,
		})
	}
	return run
}

// ToModelAuditOutcomes flattens a run's outcomes into rows keyed by the run id.
func ToModelAuditOutcomes(d domain.AuditRun) []models.AuditRunOutcome {
	rows := make([]models.AuditRunOutcome, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		rows = append(rows, models.AuditRunOutcome{
			AuditRunID: d.AuditRunID,
			BookingID:  o.BookingID,
			Action:     string(o.Action),
			Error:      o.Error,
		})
	}
	return rows
}
