package shared

import "time"

// TimeRange is a half-open interval [Start, End).
// Two ranges that only touch at an endpoint do not overlap.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange validates and builds a range. Both ends are normalized to UTC.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, NewDomainError("INVALID_TIME_RANGE", "Start and end times are required")
	}
	if !end.After(start) {
		return TimeRange{}, NewDomainError("INVALID_TIME_RANGE", "End time must be after start time")
	}
	return TimeRange{Start: start.UTC(), End: end.UTC()}, nil
}

// Duration returns the length of the range
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether the two ranges share at least one instant
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t lies inside the range
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Covers reports whether other lies entirely inside r
func (r TimeRange) Covers(other TimeRange) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// AlignedTo reports whether both ends fall on multiples of step on the local
// clock of the given location. Alignment follows the clock face, so a
// daylight saving change earlier in the day does not shift the boundaries.
func (r TimeRange) AlignedTo(step time.Duration, loc *time.Location) bool {
	if step <= 0 {
		return true
	}
	return onBoundary(r.Start.In(loc), step) && onBoundary(r.End.In(loc), step)
}

func onBoundary(t time.Time, step time.Duration) bool {
	tod := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	return tod%step == 0
}
