package domain

import "time"

// AuditRunStatus indicates the state of a night-audit batch.
type AuditRunStatus string

const (
	AuditRunning   AuditRunStatus = "RUNNING"
	AuditCompleted AuditRunStatus = "COMPLETED"
	AuditFailed    AuditRunStatus = "FAILED"
)

// AuditAction names the automatic transition applied to a booking during a run.
type AuditAction string

const (
	ActionMarkNoShow AuditAction = "MARK_NO_SHOW"
	ActionCheckOut   AuditAction = "CHECK_OUT"
)

// AuditOutcome records what happened to a single booking within a run.
// A non-empty Error means the action failed; the run continues regardless.
type AuditOutcome struct {
	BookingID string      `json:"bookingID"`
	Action    AuditAction `json:"action"`
	Error     string      `json:"error,omitempty"`
}

// AuditRun is the immutable record of one night-audit batch for a target
// business date. At most one run may be RUNNING per date, and a date can have
// at most one COMPLETED run.
type AuditRun struct {
	AuditRunID     string         `json:"auditRunID"`
	TargetDate     time.Time      `json:"targetDate"`
	Status         AuditRunStatus `json:"status"`
	StartedAt      time.Time      `json:"startedAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
	ProcessedCount int            `json:"processedCount"`
	Outcomes       []AuditOutcome `json:"outcomes"`
}

// Succeeded reports whether every per-booking outcome completed without error.
func (r AuditRun) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.Error != "" {
			return false
		}
	}
	return true
}
