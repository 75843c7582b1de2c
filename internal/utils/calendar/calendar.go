package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates throughout the API.
const DateLayout = "2006-01-02"

// Date truncates t to a calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// StayRange is a half-open interval of nights: [Arrival, Departure).
// A guest arriving on the 1st and departing on the 3rd occupies the nights
// of the 1st and the 2nd.
type StayRange struct {
	Arrival   time.Time
	Departure time.Time
}

// NewStayRange normalizes both endpoints to calendar dates.
func NewStayRange(arrival, departure time.Time) StayRange {
	return StayRange{Arrival: Date(arrival), Departure: Date(departure)}
}

// IsValid reports whether the range contains at least one night.
func (r StayRange) IsValid() bool {
	return r.Arrival.Before(r.Departure)
}

// Nights returns the number of nights in the range.
func (r StayRange) Nights() int {
	return int(r.Departure.Sub(r.Arrival).Hours() / 24)
}

// Dates returns every night of the range in ascending order.
func (r StayRange) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Nights())
	for d := r.Arrival; d.Before(r.Departure); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Covers reports whether the given date is one of the range's nights.
func (r StayRange) Covers(date time.Time) bool {
	d := Date(date)
	return !d.Before(r.Arrival) && d.Before(r.Departure)
}

func (r StayRange) String() string {
	return r.Arrival.Format(DateLayout) + ".." + r.Departure.Format(DateLayout)
}

// BusinessDate maps a wall-clock instant to the property's business date given
// the daily cutover time. Before the cutover the previous calendar date is
// still the open business day: with an 04:00 cutover, 01:30 on the 2nd still
// belongs to the business date of the 1st.
func BusinessDate(now time.Time, cutover time.Duration) time.Time {
	return Date(now.UTC().Add(-cutover))
}

// ParseCutover parses an "HH:MM" cutover string into a duration past midnight.
func ParseCutover(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid cutover time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
