package models

import "time"

// AuditRunStatus mirrors domain.AuditRunStatus for persistence.
type AuditRunStatus string

// AuditRun is the DB row shape for the audit_runs table.
type AuditRun struct {
	AuditRunID     string         `json:"auditRunID"`
	TargetDate     time.Time      `json:"targetDate"`
	Status         AuditRunStatus `json:"status"`
	StartedAt      time.Time      `json:"startedAt"`
	CompletedAt    *time.Time     `json:"completedAt"`
	ProcessedCount int            `json:"processedCount"`
}

// AuditRunOutcome is the DB row shape for the audit_run_outcomes table.
type AuditRunOutcome struct {
	AuditRunID string `json:"auditRunID"`
	BookingID  string `json:"bookingID"`
	Action     string `json:"action"`
	Error      string `json:"error"` // empty string when the action succeeded
}
