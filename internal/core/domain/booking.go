package domain

import (
	"fmt"
	"time"

	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/shopspring/decimal"
)

// BookingState indicates where a booking is in its lifecycle.
type BookingState string

const (
	StateDraft      BookingState = "DRAFT"
	StateConfirmed  BookingState = "CONFIRMED"
	StateCheckedIn  BookingState = "CHECKED_IN"
	StateCheckedOut BookingState = "CHECKED_OUT"
	StateCancelled  BookingState = "CANCELLED"
	StateNoShow     BookingState = "NO_SHOW"
)

// IsTerminal reports whether no further transitions are permitted from s.
func (s BookingState) IsTerminal() bool {
	switch s {
	case StateCheckedOut, StateCancelled, StateNoShow:
		return true
	}
	return false
}

// BookingEvent is a requested lifecycle transition.
type BookingEvent string

const (
	EventConfirm    BookingEvent = "CONFIRM"
	EventCheckIn    BookingEvent = "CHECK_IN"
	EventCheckOut   BookingEvent = "CHECK_OUT"
	EventCancel     BookingEvent = "CANCEL"
	EventMarkNoShow BookingEvent = "MARK_NO_SHOW"
)

// transitions is the closed table of allowed state changes. Anything not
// listed here fails with ErrInvalidTransition.
var transitions = map[BookingState]map[BookingEvent]BookingState{
	StateDraft: {
		EventConfirm: StateConfirmed,
		EventCancel:  StateCancelled,
	},
	StateConfirmed: {
		EventCheckIn:    StateCheckedIn,
		EventCancel:     StateCancelled,
		EventMarkNoShow: StateNoShow,
	},
	StateCheckedIn: {
		EventCheckOut: StateCheckedOut,
	},
}

// eventTargets names the state each event drives toward, for error messages
// on rejected transitions.
var eventTargets = map[BookingEvent]BookingState{
	EventConfirm:    StateConfirmed,
	EventCheckIn:    StateCheckedIn,
	EventCheckOut:   StateCheckedOut,
	EventCancel:     StateCancelled,
	EventMarkNoShow: StateNoShow,
}

// RateSnapshot is the quoted rate frozen onto the booking. The core never
// computes it; pricing is an external collaborator.
type RateSnapshot struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// Booking represents a guest reservation against room-type inventory.
type Booking struct {
	BookingID  string              `json:"bookingID"`
	GuestRef   string              `json:"guestRef"`   // opaque external guest id
	RoomTypeID string              `json:"roomTypeID"` // opaque external room-type id
	Stay       calendar.StayRange  `json:"stay"`
	State      BookingState        `json:"state"`
	Rate       RateSnapshot        `json:"rate"`
	FolioRef   string              `json:"folioRef,omitempty"` // set at check-in
	Version    int64               `json:"version"`
	AuditFields
}

// Apply validates the requested event against the transition table and returns
// an updated copy of the booking. It never touches inventory; callers sequence
// the inventory effect and the transition as one unit. On failure the receiver
// is returned unchanged alongside ErrInvalidTransition.
func (b Booking) Apply(event BookingEvent, now time.Time) (Booking, error) {
	next, ok := transitions[b.State][event]
	if !ok {
		return b, fmt.Errorf("%w: cannot apply %s to booking %s, %s to %s is not permitted",
			apperrors.ErrInvalidTransition, event, b.BookingID, b.State, eventTargets[event])
	}
	b.State = next
	b.LastUpdatedAt = now
	return b, nil
}

// CanApply reports whether the event is permitted from the booking's current state.
func (b Booking) CanApply(event BookingEvent) bool {
	_, ok := transitions[b.State][event]
	return ok
}
