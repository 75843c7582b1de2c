package dto

import (
	"time"

	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest defines the data needed to create a new booking.
// Dates are calendar dates (YYYY-MM-DD); the rate is the externally quoted
// value the booking will snapshot at confirmation.
type CreateBookingRequest struct {
	GuestRef      string          `json:"guestRef" binding:"required"`
	RoomTypeID    string          `json:"roomTypeID" binding:"required"`
	ArrivalDate   string          `json:"arrivalDate" binding:"required,datetime=2006-01-02"`
	DepartureDate string          `json:"departureDate" binding:"required,datetime=2006-01-02"`
	RateAmount    decimal.Decimal `json:"rateAmount" binding:"required"`
	RateCurrency  string          `json:"rateCurrency" binding:"required,len=3"`
}

// Stay parses the request dates into a stay range. Range validity (arrival
// before departure, horizon) is the inventory ledger's concern.
func (r CreateBookingRequest) Stay() (calendar.StayRange, error) {
	arrival, err := calendar.ParseDate(r.ArrivalDate)
	if err != nil {
		return calendar.StayRange{}, err
	}
	departure, err := calendar.ParseDate(r.DepartureDate)
	if err != nil {
		return calendar.StayRange{}, err
	}
	return calendar.NewStayRange(arrival, departure), nil
}

// CheckInRequest carries the operational date of a check-in. The business
// date is passed explicitly rather than read from the wall clock so the
// operation stays deterministic.
type CheckInRequest struct {
	CurrentDate string `json:"currentDate" binding:"required,datetime=2006-01-02"`
}

// BookingResponse defines the data returned for a booking.
type BookingResponse struct {
	BookingID     string          `json:"bookingID"`
	GuestRef      string          `json:"guestRef"`
	RoomTypeID    string          `json:"roomTypeID"`
	ArrivalDate   string          `json:"arrivalDate"`
	DepartureDate string          `json:"departureDate"`
	State         string          `json:"state"`
	RateAmount    decimal.Decimal `json:"rateAmount"`
	RateCurrency  string          `json:"rateCurrency"`
	FolioRef      string          `json:"folioRef,omitempty"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToBookingResponse converts a domain.Booking to BookingResponse DTO
func ToBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID:     b.BookingID,
		GuestRef:      b.GuestRef,
		RoomTypeID:    b.RoomTypeID,
		ArrivalDate:   b.Stay.Arrival.Format(calendar.DateLayout),
		DepartureDate: b.Stay.Departure.Format(calendar.DateLayout),
		State:         string(b.State),
		RateAmount:    b.Rate.Amount,
		RateCurrency:  b.Rate.CurrencyCode,
		FolioRef:      b.FolioRef,
		Version:       b.Version,
		CreatedAt:     b.CreatedAt,
		LastUpdatedAt: b.LastUpdatedAt,
	}
}
