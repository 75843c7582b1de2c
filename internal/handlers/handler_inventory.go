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

// inventoryHandler handles HTTP requests related to room-type inventory.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

// newInventoryHandler creates a new inventoryHandler.
func newInventoryHandler(inventoryService portssvc.InventorySvcFacade) *inventoryHandler {
	return &inventoryHandler{
		inventoryService: inventoryService,
	}
}

// searchAvailability answers per-date available counts for a room type over
// a from/to range (half-open, YYYY-MM-DD).
func (h *inventoryHandler) searchAvailability(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomTypeID := c.Param("roomTypeID")

	from, err := calendar.ParseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date, expect YYYY-MM-DD"})
		return
	}
	to, err := calendar.ParseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date, expect YYYY-MM-DD"})
		return
	}
	stay := calendar.NewStayRange(from, to)

	availability, err := h.inventoryService.CheckAvailability(c.Request.Context(), roomTypeID, stay)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidRange) {
			logger.Warn("Invalid availability range", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to check availability", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAvailabilityResponse(roomTypeID, stay, availability))
}

// setInventory seeds or adjusts capacity for one (room-type, date) cell.
func (h *inventoryHandler) setInventory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roomTypeID := c.Param("roomTypeID")

	req := dto.SetInventoryRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for SetInventory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expect YYYY-MM-DD"})
		return
	}

	if err := h.inventoryService.SetCapacity(c.Request.Context(), roomTypeID, date, req.TotalCapacity, req.BlockedCount); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error setting inventory", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to set inventory", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set inventory"})
		}
		return
	}

	logger.Info("Inventory cell updated",
		slog.String("room_type_id", roomTypeID),
		slog.String("date", req.Date),
		slog.Int("total_capacity", req.TotalCapacity),
		slog.Int("blocked_count", req.BlockedCount))
	c.Status(http.StatusNoContent)
}

// registerInventoryRoutes registers the room-type inventory routes.
func registerInventoryRoutes(group *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade) {
	h := newInventoryHandler(inventoryService)

	roomTypes := group.Group("/room-types")
	roomTypes.GET("/:roomTypeID/availability", h.searchAvailability)
	roomTypes.POST("/:roomTypeID/inventory", h.setInventory)
}
