package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	"github.com/innkeep/pms_backend/internal/models"
	"github.com/innkeep/pms_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBookingRepository struct {
	BaseRepository
}

// newPgxBookingRepository creates a new repository for booking data.
func newPgxBookingRepository(pool *pgxpool.Pool) portsrepo.BookingRepositoryWithTx {
	return &PgxBookingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBookingRepository implements portsrepo.BookingRepositoryWithTx
var _ portsrepo.BookingRepositoryWithTx = (*PgxBookingRepository)(nil)

const bookingColumns = `booking_id, guest_ref, room_type_id, arrival_date, departure_date, state, rate_amount, rate_currency, folio_ref, version, created_at, last_updated_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var m models.Booking
	err := row.Scan(&m.BookingID, &m.GuestRef, &m.RoomTypeID, &m.ArrivalDate, &m.DepartureDate,
		&m.State, &m.RateAmount, &m.RateCurrency, &m.FolioRef, &m.Version, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveBooking inserts a new booking row.
func (r *PgxBookingRepository) SaveBooking(ctx context.Context, booking domain.Booking) error {
	m := mapping.ToModelBooking(booking)
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BookingID, m.GuestRef, m.RoomTypeID, m.ArrivalDate, m.DepartureDate,
		m.State, m.RateAmount, m.RateCurrency, m.FolioRef, m.Version, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking %s: %w", m.BookingID, err)
	}
	return nil
}

// FindBookingByID retrieves a booking by its unique identifier.
func (r *PgxBookingRepository) FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1;`
	m, err := scanBooking(r.Pool.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("failed to find booking %s: %w", bookingID, err)
	}
	booking := mapping.ToDomainBooking(*m)
	return &booking, nil
}

// execer is the slice of pgxpool.Pool and pgx.Tx the versioned update needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UpdateBooking persists a mutated booking guarded by its version counter.
// The stored row is only written when its version still matches the version
// the caller read; otherwise the caller lost the race and must retry.
func (r *PgxBookingRepository) UpdateBooking(ctx context.Context, booking domain.Booking) (*domain.Booking, error) {
	return r.updateBooking(ctx, r.Pool, booking)
}

// UpdateBookingInTx runs the versioned update on a caller-owned transaction,
// for pairing with other writes that must commit or abort as one unit.
func (r *PgxBookingRepository) UpdateBookingInTx(ctx context.Context, tx pgx.Tx, booking domain.Booking) (*domain.Booking, error) {
	return r.updateBooking(ctx, tx, booking)
}

func (r *PgxBookingRepository) updateBooking(ctx context.Context, db execer, booking domain.Booking) (*domain.Booking, error) {
	m := mapping.ToModelBooking(booking)
	query := `
		UPDATE bookings
		SET state = $1, folio_ref = $2, last_updated_at = $3, version = version + 1
		WHERE booking_id = $4 AND version = $5;
	`
	tag, err := db.Exec(ctx, query, m.State, m.FolioRef, m.LastUpdatedAt, m.BookingID, m.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", m.BookingID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row vanished or someone else bumped the version.
		if _, findErr := r.FindBookingByID(ctx, booking.BookingID); findErr != nil {
			return nil, findErr
		}
		return nil, fmt.Errorf("%w: booking %s version %d is stale",
			apperrors.ErrConcurrentModification, booking.BookingID, booking.Version)
	}

	updated := booking
	updated.Version++
	return &updated, nil
}

// ListAuditCandidates returns the bookings a night audit must examine.
func (r *PgxBookingRepository) ListAuditCandidates(ctx context.Context, noShowBefore, departedBy time.Time) ([]domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE (state = $1 AND arrival_date < $2)
		   OR (state = $3 AND departure_date <= $4)
		ORDER BY booking_id;
	`
	rows, err := r.Pool.Query(ctx, query,
		models.BookingState(domain.StateConfirmed), noShowBefore,
		models.BookingState(domain.StateCheckedIn), departedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit candidates: %w", err)
	}
	defer rows.Close()

	var ms []models.Booking
	for rows.Next() {
		m, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit candidate: %w", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading audit candidates: %w", err)
	}
	return mapping.ToDomainBookingSlice(ms), nil
}
