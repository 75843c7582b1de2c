package services

import (
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The inventory ledger comes first; booking and audit both depend on it.
	container.Inventory = NewInventoryService(repos.InventoryRepo, cfg.MaxAvailabilityHorizonDays)

	// The booking service takes the inventory repo too: cancel and no-show
	// commit their span release and booking update in one transaction.
	container.Booking = NewBookingService(repos.BookingRepo, repos.InventoryRepo, container.Inventory)

	// The audit runner drives bookings through the same transition primitives
	// interactive requests use; it holds the booking repo only to enumerate
	// candidates.
	container.Audit = NewAuditService(repos.AuditRunRepo, repos.BookingRepo, container.Booking, cfg.NoShowGraceDays)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.InventorySvcFacade = (*inventoryService)(nil)
	_ portssvc.BookingSvcFacade   = (*bookingService)(nil)
	_ portssvc.AuditSvcFacade     = (*auditService)(nil)
)
