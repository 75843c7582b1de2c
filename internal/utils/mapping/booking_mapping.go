package mapping

import (
	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/models"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// ToModelBooking converts a domain Booking to a model Booking.
func ToModelBooking(d domain.Booking) models.Booking {
	var folio *string
	if d.FolioRef != "" {
		f := d.FolioRef
		folio = &f
	}
	return models.Booking{
		BookingID:     d.BookingID,
		GuestRef:      d.GuestRef,
		RoomTypeID:    d.RoomTypeID,
		ArrivalDate:   d.Stay.Arrival,
		DepartureDate: d.Stay.Departure,
		State:         models.BookingState(d.State),
		RateAmount:    d.Rate.Amount,
		RateCurrency:  d.Rate.CurrencyCode,
		FolioRef:      folio,
		Version:       d.Version,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

// ToDomainBooking converts a model Booking to a domain Booking.
func ToDomainBooking(m models.Booking) domain.Booking {
	folio := ""
	if m.FolioRef != nil {
		folio = *m.FolioRef
	}
	return domain.Booking{
		BookingID:  m.BookingID,
		GuestRef:   m.GuestRef,
		RoomTypeID: m.RoomTypeID,
		Stay:       calendar.NewStayRange(m.ArrivalDate, m.DepartureDate),
		State:      domain.BookingState(m.State),
		Rate: domain.RateSnapshot{
			Amount:       m.RateAmount,
			CurrencyCode: m.RateCurrency,
		},
		FolioRef: folio,
		Version:  m.Version,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// ToDomainBookingSlice converts a slice of model Bookings to domain Bookings.
func ToDomainBookingSlice(ms []models.Booking) []domain.Booking {
	ds := make([]domain.Booking, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBooking(m)
	}
	return ds
}
