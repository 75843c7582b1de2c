package services

import (
	"context"
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// InventoryReaderSvc exposes read-only availability queries.
type InventoryReaderSvc interface {
	// CheckAvailability returns total - reserved - blocked for every night of
	// the range. Never mutates state. Fails with apperrors.ErrInvalidRange on
	// a malformed range or one beyond the configured lookahead horizon.
	CheckAvailability(ctx context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.DateAvailability, error)
}

// InventoryWriterSvc exposes the ledger's mutating operations. Only the
// booking and audit services may call these, always paired with a booking
// state change.
type InventoryWriterSvc interface {
	// Reserve atomically holds one unit for every night of the range, or
	// fails with apperrors.ErrCapacityExceeded naming the first full date
	// without touching any night.
	Reserve(ctx context.Context, roomTypeID string, stay calendar.StayRange) error

	// Release atomically returns one unit for every night of the range.
	Release(ctx context.Context, roomTypeID string, stay calendar.StayRange) error

	// Extend holds one additional night on an existing stay.
	Extend(ctx context.Context, roomTypeID string, date time.Time) error

	// Shrink returns one night of an existing stay.
	Shrink(ctx context.Context, roomTypeID string, date time.Time) error

	// SetCapacity seeds or adjusts a cell's total capacity and blocked count.
	SetCapacity(ctx context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error
}

// InventorySvcFacade combines all inventory ledger operations.
type InventorySvcFacade interface {
	InventoryReaderSvc
	InventoryWriterSvc
}
