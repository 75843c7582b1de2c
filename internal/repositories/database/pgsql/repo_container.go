package pgsql

import (
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BookingRepo:   newPgxBookingRepository(dbPool),
		InventoryRepo: newPgxInventoryRepository(dbPool),
		AuditRunRepo:  newPgxAuditRunRepository(dbPool),
	}
}
