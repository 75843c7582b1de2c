package repositories

import (
	"context"
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BookingReader defines read operations for booking data
type BookingReader interface {
	// FindBookingByID retrieves a booking by its unique identifier.
	FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error)

	// ListAuditCandidates returns the bookings a night audit must examine:
	// CONFIRMED bookings whose arrival date is strictly before noShowBefore,
	// and CHECKED_IN bookings whose departure date is on or before departedBy.
	ListAuditCandidates(ctx context.Context, noShowBefore, departedBy time.Time) ([]domain.Booking, error)
}

// BookingWriter defines write operations for booking data
type BookingWriter interface {
	// SaveBooking inserts a new booking row.
	SaveBooking(ctx context.Context, booking domain.Booking) error

	// UpdateBooking persists a mutated booking guarded by its version counter.
	// The row is only written when the stored version matches booking.Version;
	// a mismatch fails with apperrors.ErrConcurrentModification and the
	// returned booking carries the incremented version on success.
	UpdateBooking(ctx context.Context, booking domain.Booking) (*domain.Booking, error)
}

// BookingRepositoryFacade combines all booking-related repository interfaces
type BookingRepositoryFacade interface {
	BookingReader
	BookingWriter
}

// BookingRepositoryWithTx extends BookingRepositoryFacade with transaction capabilities
type BookingRepositoryWithTx interface {
	BookingRepositoryFacade
	TransactionManager

	// UpdateBookingInTx is UpdateBooking executed on a caller-owned
	// transaction, for pairing the versioned write with other mutations that
	// must commit or abort as one unit.
	UpdateBookingInTx(ctx context.Context, tx pgx.Tx, booking domain.Booking) (*domain.Booking, error)
}
