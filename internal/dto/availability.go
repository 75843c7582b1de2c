package dto

import (
	"github.com/innkeep/pms_backend/internal/core/domain"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
)

// DateAvailabilityResponse is one night's sellable count.
type DateAvailabilityResponse struct {
	Date      string `json:"date"`
	Available int    `json:"available"`
}

// AvailabilityResponse answers an availability search over a date range.
type AvailabilityResponse struct {
	RoomTypeID string                     `json:"roomTypeID"`
	From       string                     `json:"from"`
	To         string                     `json:"to"`
	Nights     []DateAvailabilityResponse `json:"nights"`
}

// ToAvailabilityResponse converts per-date availability to the response DTO.
func ToAvailabilityResponse(roomTypeID string, stay calendar.StayRange, nights []domain.DateAvailability) AvailabilityResponse {
	resp := AvailabilityResponse{
		RoomTypeID: roomTypeID,
		From:       stay.Arrival.Format(calendar.DateLayout),
		To:         stay.Departure.Format(calendar.DateLayout),
		Nights:     make([]DateAvailabilityResponse, 0, len(nights)),
	}
	for _, n := range nights {
		resp.Nights = append(resp.Nights, DateAvailabilityResponse{
			Date:      n.Date.Format(calendar.DateLayout),
			Available: n.Available,
		})
	}
	return resp
}

// SetInventoryRequest seeds capacity for one (room-type, date) cell. This is
// the configuration collaborator's edge; reserved counts are never set here.
type SetInventoryRequest struct {
	Date          string `json:"date" binding:"required,datetime=2006-01-02"`
	TotalCapacity int    `json:"totalCapacity" binding:"min=0"`
	BlockedCount  int    `json:"blockedCount" binding:"min=0"`
}
