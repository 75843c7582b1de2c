package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portsrepo "github.com/innkeep/pms_backend/internal/core/ports/repositories"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/dto"
	"github.com/innkeep/pms_backend/internal/middleware"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// bookingService orchestrates the booking lifecycle. It is the only writer
// that touches both the inventory ledger and the state machine, sequencing
// the inventory effect and the state transition as one logical unit.
type bookingService struct {
	bookingRepo   portsrepo.BookingRepositoryWithTx
	inventoryRepo portsrepo.InventoryRepositoryWithTx
	inventorySvc  portssvc.InventoryWriterSvc
	now           func() time.Time
}

// BookingServiceOption configures optional booking service dependencies.
type BookingServiceOption func(*bookingService)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *bookingService) {
		s.now = now
	}
}

// NewBookingService creates a new BookingService. The inventory repository is
// held alongside the inventory service so a span release and the versioned
// booking update can share one transaction.
func NewBookingService(bookingRepo portsrepo.BookingRepositoryWithTx, inventoryRepo portsrepo.InventoryRepositoryWithTx, inventorySvc portssvc.InventoryWriterSvc, opts ...BookingServiceOption) portssvc.BookingSvcFacade {
	s := &bookingService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		inventorySvc:  inventorySvc,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure bookingService implements the portssvc.BookingSvcFacade interface
var _ portssvc.BookingSvcFacade = (*bookingService)(nil)

// GetBookingByID retrieves a single booking.
func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CreateBooking reserves inventory first and only then creates a DRAFT
// booking, so a booking never exists without a matching reservation. On a
// capacity failure nothing is created.
func (s *bookingService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*domain.Booking, error) {
	stay, err := req.Stay()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if err := s.inventorySvc.Reserve(ctx, req.RoomTypeID, stay); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking := domain.Booking{
		BookingID:  uuid.NewString(),
		GuestRef:   req.GuestRef,
		RoomTypeID: req.RoomTypeID,
		Stay:       stay,
		State:      domain.StateDraft,
		Rate: domain.RateSnapshot{
			Amount:       req.RateAmount,
			CurrencyCode: req.RateCurrency,
		},
		Version: 1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.bookingRepo.SaveBooking(ctx, booking); err != nil {
		// The hold must not outlive the failed creation.
		if relErr := s.inventorySvc.Release(ctx, req.RoomTypeID, stay); relErr != nil {
			middleware.GetLoggerFromCtx(ctx).Error("failed to release inventory after booking save failure",
				slog.String("room_type_id", req.RoomTypeID),
				slog.String("stay", stay.String()),
				slog.String("error", relErr.Error()))
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logTransition(ctx, booking, "", domain.StateDraft)
	return &booking, nil
}

// ConfirmBooking moves DRAFT to CONFIRMED, freezing the rate snapshot. The
// inventory for the booking's range is already reserved since creation.
func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, domain.EventConfirm, nil)
}

// CheckIn moves CONFIRMED to CHECKED_IN and opens the guest folio. Only
// permitted on or after the arrival date.
func (s *bookingService) CheckIn(ctx context.Context, bookingID string, currentDate time.Time) (*domain.Booking, error) {
	day := calendar.Date(currentDate)
	return s.transition(ctx, bookingID, domain.EventCheckIn, func(b *domain.Booking) error {
		if day.Before(b.Stay.Arrival) {
			return fmt.Errorf("%w: cannot check in booking %s on %s, arrival is %s",
				apperrors.ErrInvalidTransition, b.BookingID,
				day.Format(calendar.DateLayout), b.Stay.Arrival.Format(calendar.DateLayout))
		}
		b.FolioRef = uuid.NewString()
		return nil
	})
}

// CheckOut moves CHECKED_IN to CHECKED_OUT. Reserved inventory is untouched;
// the stay already consumed its nights.
func (s *bookingService) CheckOut(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, domain.EventCheckOut, nil)
}

// CancelBooking releases the booking's full night span and then applies the
// CANCELLED transition. A confirmed booking can only be cancelled while the
// current date is before its departure; past departure the night audit owns
// the outcome. A draft can be abandoned at any time.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	day := calendar.Date(s.now().UTC())
	return s.releaseAndTransition(ctx, bookingID, domain.EventCancel, func(b *domain.Booking) error {
		if b.State == domain.StateConfirmed && !day.Before(b.Stay.Departure) {
			return fmt.Errorf("%w: cannot cancel booking %s on %s, departure %s has passed",
				apperrors.ErrInvalidTransition, b.BookingID,
				day.Format(calendar.DateLayout), b.Stay.Departure.Format(calendar.DateLayout))
		}
		return nil
	})
}

// MarkNoShow is the night audit's automatic transition for confirmed bookings
// whose guest never arrived by the audited date.
func (s *bookingService) MarkNoShow(ctx context.Context, bookingID string, targetDate time.Time) (*domain.Booking, error) {
	day := calendar.Date(targetDate)
	return s.releaseAndTransition(ctx, bookingID, domain.EventMarkNoShow, func(b *domain.Booking) error {
		if !day.After(b.Stay.Arrival) {
			return fmt.Errorf("%w: cannot mark booking %s no-show on %s, arrival %s has not elapsed",
				apperrors.ErrInvalidTransition, b.BookingID,
				day.Format(calendar.DateLayout), b.Stay.Arrival.Format(calendar.DateLayout))
		}
		return nil
	})
}

// transition loads the booking, runs the optional guard, applies the event and
// persists the result under the optimistic version check.
func (s *bookingService) transition(ctx context.Context, bookingID string, event domain.BookingEvent, guard func(*domain.Booking) error) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// The state rule is checked before any guard side effects.
	if !booking.CanApply(event) {
		_, applyErr := booking.Apply(event, s.now().UTC())
		return nil, applyErr
	}
	if guard != nil {
		if err := guard(booking); err != nil {
			return nil, err
		}
	}

	from := booking.State
	updated, err := booking.Apply(event, s.now().UTC())
	if err != nil {
		return nil, err
	}

	persisted, err := s.bookingRepo.UpdateBooking(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.logTransition(ctx, *persisted, from, persisted.State)
	return persisted, nil
}

// releaseAndTransition sequences an inventory release with a terminal-bound
// transition as one unit: both run inside a single transaction, so a failed
// versioned update (or a release invariant violation) aborts the whole unit
// and a retry starts from unchanged state. The transition is validated up
// front so a booking that cannot leave its state never loses its hold.
func (s *bookingService) releaseAndTransition(ctx context.Context, bookingID string, event domain.BookingEvent, guard func(*domain.Booking) error) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.CanApply(event) {
		_, applyErr := booking.Apply(event, s.now().UTC())
		return nil, applyErr
	}
	if guard != nil {
		if err := guard(booking); err != nil {
			return nil, err
		}
	}

	from := booking.State
	updated, err := booking.Apply(event, s.now().UTC())
	if err != nil {
		return nil, err
	}

	tx, err := s.bookingRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// Will be ignored if transaction is committed successfully
	defer s.bookingRepo.Rollback(ctx, tx)

	if err := s.inventoryRepo.ReleaseSpanInTx(ctx, tx, booking.RoomTypeID, booking.Stay); err != nil {
		return nil, fmt.Errorf("failed to release inventory for booking %s: %w", bookingID, err)
	}

	persisted, err := s.bookingRepo.UpdateBookingInTx(ctx, tx, updated)
	if err != nil {
		// Rolling back restores the hold along with the booking row.
		return nil, err
	}

	if err := s.bookingRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit release for booking %s: %w", bookingID, err)
	}

	s.logTransition(ctx, *persisted, from, persisted.State)
	return persisted, nil
}

func (s *bookingService) logTransition(ctx context.Context, b domain.Booking, from, to domain.BookingState) {
	middleware.GetLoggerFromCtx(ctx).Info("booking state transition",
		slog.String("booking_id", b.BookingID),
		slog.String("room_type_id", b.RoomTypeID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Int64("version", b.Version))
}
