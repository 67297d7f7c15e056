package booking

import (
	"time"

	"github.com/roombook/backend/internal/domain/shared"
)

// Slot is one bookable step of a day
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// BuildDaySlots splits the opening window of day into rule-sized slots and
// marks each one unavailable when it overlaps a busy range or has already
// started. A closed day yields no slots.
func BuildDaySlots(day time.Time, rules Rules, busy []shared.TimeRange, now time.Time) []Slot {
	loc := rules.location()
	if rules.Slot <= 0 || !rules.OpeningHours.IsOpenOn(day.In(loc).Weekday()) {
		return []Slot{}
	}

	hours := rules.OpeningHours
	if hours.Close <= hours.Open {
		return []Slot{}
	}

	local := day.In(loc)
	slots := make([]Slot, 0, int((hours.Close-hours.Open)/rules.Slot))
	for tod := hours.Open; tod+rules.Slot <= hours.Close; tod += rules.Slot {
		start, end := clockTime(local, tod), clockTime(local, tod+rules.Slot)
		// a slot inside the skipped hour of a spring-forward day
		if !end.After(start) {
			continue
		}
		r := shared.TimeRange{Start: start.UTC(), End: end.UTC()}
		_, taken := CheckConflict(r, busy)
		slots = append(slots, Slot{
			Start:     r.Start,
			End:       r.End,
			Available: !taken && !r.Start.Before(now),
		})
	}
	return slots
}
