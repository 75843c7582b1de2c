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

// bookingHandler handles HTTP requests related to bookings.
type bookingHandler struct {
	bookingService portssvc.BookingSvcFacade
}

// newBookingHandler creates a new bookingHandler.
func newBookingHandler(bookingService portssvc.BookingSvcFacade) *bookingHandler {
	return &bookingHandler{
		bookingService: bookingService,
	}
}

// respondBookingError translates the booking error taxonomy to HTTP statuses.
func respondBookingError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidRange):
		logger.Warn("Booking request rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrCapacityExceeded),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrConcurrentModification):
		logger.Warn("Booking operation conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// createBooking reserves inventory and creates a DRAFT booking.
func (h *bookingHandler) createBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CreateBookingRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateBooking", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err, "Failed to create booking")
		return
	}

	logger.Info("Booking created", slog.String("booking_id", booking.BookingID))
	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// getBooking retrieves a booking by id.
func (h *bookingHandler) getBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBookingByID(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondBookingError(c, err, "Failed to retrieve booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// confirmBooking moves a DRAFT booking to CONFIRMED.
func (h *bookingHandler) confirmBooking(c *gin.Context) {
	booking, err := h.bookingService.ConfirmBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondBookingError(c, err, "Failed to confirm booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// checkIn moves a CONFIRMED booking to CHECKED_IN on the given business date.
func (h *bookingHandler) checkIn(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CheckInRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CheckIn", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	currentDate, err := calendar.ParseDate(req.CurrentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid currentDate, expect YYYY-MM-DD"})
		return
	}

	booking, err := h.bookingService.CheckIn(c.Request.Context(), c.Param("bookingID"), currentDate)
	if err != nil {
		respondBookingError(c, err, "Failed to check in booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// checkOut moves a CHECKED_IN booking to CHECKED_OUT.
func (h *bookingHandler) checkOut(c *gin.Context) {
	booking, err := h.bookingService.CheckOut(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondBookingError(c, err, "Failed to check out booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// cancelBooking releases the booking's inventory and moves it to CANCELLED.
func (h *bookingHandler) cancelBooking(c *gin.Context) {
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondBookingError(c, err, "Failed to cancel booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// registerBookingRoutes registers the booking lifecycle routes.
func registerBookingRoutes(group *gin.RouterGroup, bookingService portssvc.BookingSvcFacade) {
	h := newBookingHandler(bookingService)

	bookings := group.Group("/bookings")
	{
		bookings.POST("/", h.createBooking)
		bookings.GET("/:bookingID", h.getBooking)
		bookings.POST("/:bookingID/confirm", h.confirmBooking)
		bookings.POST("/:bookingID/check-in", h.checkIn)
		bookings.POST("/:bookingID/check-out", h.checkOut)
		bookings.POST("/:bookingID/cancel", h.cancelBooking)
	}
}
