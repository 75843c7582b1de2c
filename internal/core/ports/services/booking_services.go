package services

import (
	"context"
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/dto"
)

// BookingReaderSvc exposes read operations for bookings.
type BookingReaderSvc interface {
	GetBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error)
}

// BookingWriterSvc exposes the booking lifecycle operations. Each one returns
// the updated booking or a typed error from the closed taxonomy; inventory
// effects and state transitions are sequenced inside as one logical unit.
type BookingWriterSvc interface {
	// CreateBooking reserves inventory first and only then creates a DRAFT
	// booking, so a booking never exists without a matching hold.
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*domain.Booking, error)

	// ConfirmBooking moves DRAFT to CONFIRMED, freezing the rate snapshot.
	ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error)

	// CheckIn moves CONFIRMED to CHECKED_IN and assigns the folio reference.
	// Fails when currentDate is before the arrival date.
	CheckIn(ctx context.Context, bookingID string, currentDate time.Time) (*domain.Booking, error)

	// CheckOut moves CHECKED_IN to CHECKED_OUT. Reserved inventory is left
	// untouched; the stay already consumed it.
	CheckOut(ctx context.Context, bookingID string) (*domain.Booking, error)

	// CancelBooking releases the booking's full night span and then moves it
	// to CANCELLED. If the release fails the booking state stays unchanged.
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)

	// MarkNoShow is the night audit's automatic transition for CONFIRMED
	// bookings whose guest never arrived: release the held nights, then move
	// to NO_SHOW. targetDate must be strictly after the arrival date.
	MarkNoShow(ctx context.Context, bookingID string, targetDate time.Time) (*domain.Booking, error)
}

// BookingSvcFacade combines all booking operations.
type BookingSvcFacade interface {
	BookingReaderSvc
	BookingWriterSvc
}
