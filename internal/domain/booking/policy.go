package booking

import (
	"fmt"
	"time"

	"github.com/roombook/backend/internal/domain/shared"
)

// OpeningHours is the daily window in which rooms can be booked. Open and
// Close are wall-clock times of day, so the window keeps its local hours on
// days when daylight saving time starts or ends.
type OpeningHours struct {
	Open  time.Duration
	Close time.Duration
	Days  []time.Weekday
}

// IsOpenOn reports whether bookings are accepted on the given weekday
func (h OpeningHours) IsOpenOn(d time.Weekday) bool {
	if len(h.Days) == 0 {
		return true
	}
	for _, day := range h.Days {
		if day == d {
			return true
		}
	}
	return false
}

// Window returns the opening window of the calendar day containing t, in loc
func (h OpeningHours) Window(t time.Time, loc *time.Location) shared.TimeRange {
	local := t.In(loc)
	return shared.TimeRange{Start: clockTime(local, h.Open), End: clockTime(local, h.Close)}
}

// clockTime returns the instant on day's calendar date at which the local
// clock reads the given time of day.
func clockTime(day time.Time, tod time.Duration) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		int(tod/time.Hour), int(tod%time.Hour/time.Minute), int(tod%time.Minute/time.Second),
		0, day.Location())
}

// Rules are the scheduling constraints applied to a booking request. Site-wide
// values come from configuration; MaxDuration and Horizon come from the
// requester's subscription plan.
type Rules struct {
	Slot         time.Duration
	Location     *time.Location
	OpeningHours OpeningHours
	MaxDuration  time.Duration
	Horizon      time.Duration
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Check validates a requested range against the rules at instant now
func (r Rules) Check(slot shared.TimeRange, now time.Time) error {
	if !slot.End.After(slot.Start) {
		return shared.NewDomainError("INVALID_TIME_RANGE", "End time must be after start time")
	}
	if slot.Start.Before(now) {
		return shared.NewDomainError("START_IN_PAST", "Bookings cannot start in the past")
	}
	if !slot.AlignedTo(r.Slot, r.location()) {
		return shared.NewDomainError("MISALIGNED_SLOT",
			fmt.Sprintf("Start and end must fall on %d-minute boundaries", int(r.Slot/time.Minute)))
	}
	if r.MaxDuration > 0 && slot.Duration() > r.MaxDuration {
		return shared.NewDomainError("BOOKING_TOO_LONG",
			fmt.Sprintf("Your plan allows bookings of at most %s", formatHours(r.MaxDuration)))
	}
	if r.Horizon > 0 && slot.Start.After(now.Add(r.Horizon)) {
		return shared.NewDomainError("BEYOND_HORIZON",
			fmt.Sprintf("Your plan allows booking at most %d days ahead", int(r.Horizon/(24*time.Hour))))
	}

	loc := r.location()
	if !r.OpeningHours.IsOpenOn(slot.Start.In(loc).Weekday()) {
		return shared.NewDomainError("OUTSIDE_OPENING_HOURS", "Rooms cannot be booked on this day")
	}
	if r.OpeningHours.Close > r.OpeningHours.Open {
		window := r.OpeningHours.Window(slot.Start, loc)
		if !window.Covers(slot) {
			return shared.NewDomainError("OUTSIDE_OPENING_HOURS", "Booking must be within opening hours")
		}
	}
	return nil
}

// CheckConflict returns the first range in existing that overlaps candidate
func CheckConflict(candidate shared.TimeRange, existing []shared.TimeRange) (shared.TimeRange, bool) {
	for _, r := range existing {
		if candidate.Overlaps(r) {
			return r, true
		}
	}
	return shared.TimeRange{}, false
}

// ErrSlotTaken is returned when a requested range overlaps an active booking
var ErrSlotTaken = shared.NewDomainError("CONFLICT", "The room is already booked for part of this time")

func formatHours(d time.Duration) string {
	hours := d.Hours()
	if hours == float64(int(hours)) {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(hours))
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
