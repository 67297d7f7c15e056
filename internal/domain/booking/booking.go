package booking

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/segmentio/ksuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a booking
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses are the states that occupy a room
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether a booking in this state blocks the room
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking reserves a room for a user over a half-open time range
type Booking struct {
	shared.BaseAggregateRoot
	Reference    string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	RoomID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_bookings_room_start,priority:1"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title        string          `gorm:"type:varchar(200);not null"`
	Notes        string          `gorm:"type:text"`
	Attendees    int             `gorm:"not null;default:1"`
	StartAt      time.Time       `gorm:"not null;index:idx_bookings_room_start,priority:2"`
	EndAt        time.Time       `gorm:"not null"`
	Status       Status          `gorm:"type:varchar(20);not null;index"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelledBy  *uuid.UUID `gorm:"type:uuid"`
	CancelReason string     `gorm:"type:varchar(500)"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// Draft holds everything needed to create a booking once policy checks have passed
type Draft struct {
	RoomID           uuid.UUID
	UserID           uuid.UUID
	Title            string
	Notes            string
	Attendees        int
	Slot             shared.TimeRange
	Price            decimal.Decimal
	RequiresApproval bool
}

// NewReference generates a sortable, human-quotable booking reference
func NewReference() string {
	return "BK-" + ksuid.New().String()
}

// NewBooking creates a booking. Rooms that require approval start pending,
// all others are confirmed immediately.
func NewBooking(d Draft) (*Booking, error) {
	if d.RoomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Room is required")
	}
	if d.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	if !d.Slot.End.After(d.Slot.Start) {
		return nil, shared.NewDomainError("INVALID_TIME_RANGE", "End time must be after start time")
	}
	if d.Price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	b := &Booking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         NewReference(),
		RoomID:            d.RoomID,
		UserID:            d.UserID,
		StartAt:           d.Slot.Start.UTC(),
		EndAt:             d.Slot.End.UTC(),
		TotalPrice:        d.Price.Round(2),
		Status:            StatusConfirmed,
	}
	if err := b.applyDetails(d.Title, d.Notes, d.Attendees); err != nil {
		return nil, err
	}

	if d.RequiresApproval {
		b.Status = StatusPending
	} else {
		now := b.CreatedAt
		b.ConfirmedAt = &now
	}

	b.AddDomainEvent(NewBookingCreatedEvent(b))
	return b, nil
}

// Range returns the booked interval
func (b *Booking) Range() shared.TimeRange {
	return shared.TimeRange{Start: b.StartAt, End: b.EndAt}
}

// Duration returns the booked length
func (b *Booking) Duration() time.Duration {
	return b.EndAt.Sub(b.StartAt)
}

// IsOwnedBy reports whether userID made the booking
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// HasStarted reports whether the booked range has begun at now
func (b *Booking) HasStarted(now time.Time) bool {
	return !now.Before(b.StartAt)
}

// UpdateDetails changes the descriptive fields of an active booking
func (b *Booking) UpdateDetails(title, notes string, attendees int) error {
	if !b.Status.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Only pending or confirmed bookings can be edited")
	}
	if err := b.applyDetails(title, notes, attendees); err != nil {
		return err
	}
	b.IncrementVersion()
	return nil
}

// Confirm approves a pending booking
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending bookings can be confirmed")
	}
	now = now.UTC()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingConfirmedEvent(b))
	return nil
}

// CancelByOwner cancels on behalf of the booking's owner, which is only
// possible before the booking starts.
func (b *Booking) CancelByOwner(reason string, now time.Time) error {
	if b.Status.IsActive() && b.HasStarted(now) {
		return shared.NewDomainError("CANCELLATION_CLOSED", "Bookings cannot be cancelled after they have started")
	}
	return b.cancel(b.UserID, reason, now)
}

// CancelByAdmin cancels regardless of start time
func (b *Booking) CancelByAdmin(adminID uuid.UUID, reason string, now time.Time) error {
	return b.cancel(adminID, reason, now)
}

func (b *Booking) cancel(by uuid.UUID, reason string, now time.Time) error {
	if !b.Status.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Only pending or confirmed bookings can be cancelled")
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}
	now = now.UTC()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.CancelledBy = &by
	b.CancelReason = reason
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingCancelledEvent(b))
	return nil
}

// Complete closes a confirmed booking whose range has ended
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed bookings can be completed")
	}
	if now.Before(b.EndAt) {
		return shared.NewDomainError("INVALID_STATE", "Booking has not ended yet")
	}
	now = now.UTC()
	b.Status = StatusCompleted
	b.CompletedAt = &now
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingCompletedEvent(b))
	return nil
}

// Reschedule moves an active booking that has not started to a new range.
// The caller is responsible for policy and conflict checks on the new range.
func (b *Booking) Reschedule(slot shared.TimeRange, price decimal.Decimal, now time.Time) error {
	if !b.Status.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Only pending or confirmed bookings can be rescheduled")
	}
	if b.HasStarted(now) {
		return shared.NewDomainError("INVALID_STATE", "Bookings cannot be rescheduled after they have started")
	}
	if !slot.End.After(slot.Start) {
		return shared.NewDomainError("INVALID_TIME_RANGE", "End time must be after start time")
	}
	old := b.Range()
	b.StartAt = slot.Start.UTC()
	b.EndAt = slot.End.UTC()
	b.TotalPrice = price.Round(2)
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingRescheduledEvent(b, old))
	return nil
}

func (b *Booking) applyDetails(title, notes string, attendees int) error {
	title = strings.TrimSpace(title)
	notes = strings.TrimSpace(notes)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if utf8.RuneCountInString(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	if utf8.RuneCountInString(notes) > 1000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}
	if attendees < 1 {
		return shared.NewDomainError("INVALID_ATTENDEES", "At least one attendee is required")
	}
	b.Title = title
	b.Notes = notes
	b.Attendees = attendees
	return nil
}
