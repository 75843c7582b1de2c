package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innkeep/pms_backend/internal/apperrors"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/dto"
	"github.com/innkeep/pms_backend/internal/middleware"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// auditHandler handles HTTP requests related to night-audit runs.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

// newAuditHandler creates a new auditHandler.
func newAuditHandler(auditService portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{
		auditService: auditService,
	}
}

// runAudit triggers the night audit for the requested business date. This is
// the endpoint a scheduled trigger calls once per day; re-running a completed
// date returns the existing record.
func (h *auditHandler) runAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.RunAuditRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RunAudit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	targetDate, err := calendar.ParseDate(req.TargetDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid targetDate, expect YYYY-MM-DD"})
		return
	}

	run, err := h.auditService.RunAudit(c.Request.Context(), targetDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuditRunning) {
			logger.Warn("Night audit already running", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to run night audit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run night audit"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAuditRunResponse(run))
}

// getAuditRun returns the recorded run for one business date.
func (h *auditHandler) getAuditRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	targetDate, err := calendar.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expect YYYY-MM-DD"})
		return
	}

	run, err := h.auditService.GetAuditRun(c.Request.Context(), targetDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to retrieve audit run", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit run"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAuditRunResponse(run))
}

// registerAuditRoutes registers the night-audit routes.
func registerAuditRoutes(group *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	audits := group.Group("/audit-runs")
	audits.POST("/", h.runAudit)
	audits.GET("/:date", h.getAuditRun)
}
