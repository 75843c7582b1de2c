package repositories

import (
	"context"
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/jackc/pgx/v5"
)

// InventoryReader defines read operations for inventory cells
type InventoryReader interface {
	// FindCells returns the cells for every night of the range, ascending by
	// date. Nights with no seeded row are absent from the result.
	FindCells(ctx context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.InventoryCell, error)
}

// InventoryWriter defines write operations for inventory cells
type InventoryWriter interface {
	// ReserveSpan atomically increments the reserved count for every night of
	// the range, but only if every night has at least one unit available.
	// Otherwise no night is mutated and the call fails with
	// apperrors.ErrCapacityExceeded naming the first insufficient date.
	ReserveSpan(ctx context.Context, roomTypeID string, stay calendar.StayRange) error

	// ReleaseSpan atomically decrements the reserved count for every night of
	// the range. Decrementing below zero is an invariant violation and aborts
	// the whole span untouched.
	ReleaseSpan(ctx context.Context, roomTypeID string, stay calendar.StayRange) error

	// UpsertCell seeds or adjusts the capacity and blocked count for one
	// (room-type, date) cell. Reserved counts are never written this way.
	UpsertCell(ctx context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error
}

// InventoryRepositoryFacade combines all inventory-related repository interfaces
type InventoryRepositoryFacade interface {
	InventoryReader
	InventoryWriter
}

// InventoryRepositoryWithTx extends InventoryRepositoryFacade with transaction capabilities
type InventoryRepositoryWithTx interface {
	InventoryRepositoryFacade
	TransactionManager

	// ReleaseSpanInTx is ReleaseSpan executed on a caller-owned transaction,
	// so the release commits or aborts together with the caller's other
	// writes in the same transaction.
	ReleaseSpanInTx(ctx context.Context, tx pgx.Tx, roomTypeID string, stay calendar.StayRange) error
}
