package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/dto"
	"github.com/innkeep/pms_backend/internal/platform/config"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerValidations()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerInventoryRoutes(v1, services.Inventory)
	registerBookingRoutes(v1, services.Booking)
	registerAuditRoutes(v1, services.Audit)
}

// registerValidations adds struct-level validations the tag syntax cannot
// express, e.g. departure strictly after arrival.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterStructValidation(createBookingStructLevel, dto.CreateBookingRequest{})
}

func createBookingStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(dto.CreateBookingRequest)

	arrival, errA := calendar.ParseDate(req.ArrivalDate)
	departure, errD := calendar.ParseDate(req.DepartureDate)
	if errA != nil || errD != nil {
		// The datetime tag already reports the format error.
		return
	}
	if !arrival.Before(departure) {
		sl.ReportError(req.DepartureDate, "departureDate", "DepartureDate", "gtfield", "ArrivalDate")
	}
}
