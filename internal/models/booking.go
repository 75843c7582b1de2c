package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingState mirrors domain.BookingState for persistence.
type BookingState string

// Booking is the DB row shape for the bookings table.
type Booking struct {
	BookingID     string          `json:"bookingID"`
	GuestRef      string          `json:"guestRef"`
	RoomTypeID    string          `json:"roomTypeID"`
	ArrivalDate   time.Time       `json:"arrivalDate"`
	DepartureDate time.Time       `json:"departureDate"`
	State         BookingState    `json:"state"`
	RateAmount    decimal.Decimal `json:"rateAmount"`
	RateCurrency  string          `json:"rateCurrency"`
	FolioRef      *string         `json:"folioRef"` // NULL until check-in
	Version       int64           `json:"version"`
	AuditFields
}
