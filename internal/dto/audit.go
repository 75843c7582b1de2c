package dto

import (
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// RunAuditRequest asks for a night audit of one business date.
type RunAuditRequest struct {
	TargetDate string `json:"targetDate" binding:"required,datetime=2006-01-02"`
}

// AuditOutcomeResponse is one booking's result within a run.
type AuditOutcomeResponse struct {
	BookingID string `json:"bookingID"`
	Action    string `json:"action"`
	Error     string `json:"error,omitempty"`
}

// AuditRunResponse defines the data returned for a night-audit run.
type AuditRunResponse struct {
	AuditRunID     string                 `json:"auditRunID"`
	TargetDate     string                 `json:"targetDate"`
	Status         string                 `json:"status"`
	StartedAt      time.Time              `json:"startedAt"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	ProcessedCount int                    `json:"processedCount"`
	Outcomes       []AuditOutcomeResponse `json:"outcomes"`
}

// ToAuditRunResponse converts a domain.AuditRun to AuditRunResponse DTO
func ToAuditRunResponse(run *domain.AuditRun) AuditRunResponse {
	resp := AuditRunResponse{
		AuditRunID:     run.AuditRunID,
		TargetDate:     run.TargetDate.Format(calendar.DateLayout),
		Status:         string(run.Status),
		StartedAt:      run.StartedAt,
		CompletedAt:    run.CompletedAt,
		ProcessedCount: run.ProcessedCount,
		Outcomes:       make([]AuditOutcomeResponse, 0, len(run.Outcomes)),
	}
	for _, o := range run.Outcomes {
		resp.Outcomes = append(resp.Outcomes, AuditOutcomeResponse{
			BookingID: o.BookingID,
			Action:    string(o.Action),
			Error:     o.Error,
		})
	}
	return resp
}
