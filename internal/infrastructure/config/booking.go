package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Location resolves the configured IANA timezone
func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking.timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// Slot returns the booking granularity
func (b BookingConfig) Slot() time.Duration {
	return time.Duration(b.SlotMinutes) * time.Minute
}

// OpenOffset returns the opening time of day on the local clock
func (b BookingConfig) OpenOffset() (time.Duration, error) {
	return parseClock("booking.open_time", b.OpenTime)
}

// CloseOffset returns the closing time of day on the local clock
func (b BookingConfig) CloseOffset() (time.Duration, error) {
	return parseClock("booking.close_time", b.CloseTime)
}

// Weekdays parses OpenDays ("mon", "Tuesday", ...) into time.Weekday values
func (b BookingConfig) Weekdays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(b.OpenDays))
	seen := make(map[time.Weekday]bool)
	for _, raw := range b.OpenDays {
		key := strings.ToLower(strings.TrimSpace(raw))
		if len(key) > 3 {
			key = key[:3]
		}
		d, ok := weekdayNames[key]
		if !ok {
			return nil, fmt.Errorf("booking.open_days: unknown weekday %q", raw)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("booking.open_days must name at least one weekday")
	}
	return days, nil
}

func parseClock(field, value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("%s must be HH:MM, got %q", field, value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d, nil
}
