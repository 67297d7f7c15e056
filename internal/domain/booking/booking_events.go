package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeBooking is the aggregate type name for bookings
const AggregateTypeBooking = "Booking"

// Event type constants for Booking
const (
	EventTypeBookingCreated     = "BookingCreated"
	EventTypeBookingConfirmed   = "BookingConfirmed"
	EventTypeBookingCancelled   = "BookingCancelled"
	EventTypeBookingRescheduled = "BookingRescheduled"
	EventTypeBookingCompleted   = "BookingCompleted"
)

// BookingCreatedEvent is published when a booking is made
type BookingCreatedEvent struct {
	shared.BaseDomainEvent
	BookingID  uuid.UUID       `json:"booking_id"`
	Reference  string          `json:"reference"`
	RoomID     uuid.UUID       `json:"room_id"`
	UserID     uuid.UUID       `json:"user_id"`
	StartAt    time.Time       `json:"start_at"`
	EndAt      time.Time       `json:"end_at"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewBookingCreatedEvent creates a new BookingCreatedEvent
func NewBookingCreatedEvent(b *Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCreated, AggregateTypeBooking, b.ID),
		BookingID:       b.ID,
		Reference:       b.Reference,
		RoomID:          b.RoomID,
		UserID:          b.UserID,
		StartAt:         b.StartAt,
		EndAt:           b.EndAt,
		Status:          b.Status,
		TotalPrice:      b.TotalPrice,
	}
}

// BookingConfirmedEvent is published when an admin approves a pending booking
type BookingConfirmedEvent struct {
	shared.BaseDomainEvent
	BookingID uuid.UUID `json:"booking_id"`
	Reference string    `json:"reference"`
	UserID    uuid.UUID `json:"user_id"`
}

// NewBookingConfirmedEvent creates a new BookingConfirmedEvent
func NewBookingConfirmedEvent(b *Booking) *BookingConfirmedEvent {
	return &BookingConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingConfirmed, AggregateTypeBooking, b.ID),
		BookingID:       b.ID,
		Reference:       b.Reference,
		UserID:          b.UserID,
	}
}

// BookingCancelledEvent is published when a booking is cancelled by its owner or an admin
type BookingCancelledEvent struct {
	shared.BaseDomainEvent
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	RoomID      uuid.UUID `json:"room_id"`
	UserID      uuid.UUID `json:"user_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason,omitempty"`
}

// NewBookingCancelledEvent creates a new BookingCancelledEvent
func NewBookingCancelledEvent(b *Booking) *BookingCancelledEvent {
	e := &BookingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCancelled, AggregateTypeBooking, b.ID),
		BookingID:       b.ID,
		Reference:       b.Reference,
		RoomID:          b.RoomID,
		UserID:          b.UserID,
		Reason:          b.CancelReason,
	}
	if b.CancelledBy != nil {
		e.CancelledBy = *b.CancelledBy
	}
	return e
}

// BookingRescheduledEvent is published when a booking moves to a new range
type BookingRescheduledEvent struct {
	shared.BaseDomainEvent
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	OldStartAt time.Time `json:"old_start_at"`
	OldEndAt   time.Time `json:"old_end_at"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
}

// NewBookingRescheduledEvent creates a new BookingRescheduledEvent
func NewBookingRescheduledEvent(b *Booking, old shared.TimeRange) *BookingRescheduledEvent {
	return &BookingRescheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingRescheduled, AggregateTypeBooking, b.ID),
		BookingID:       b.ID,
		Reference:       b.Reference,
		OldStartAt:      old.Start,
		OldEndAt:        old.End,
		StartAt:         b.StartAt,
		EndAt:           b.EndAt,
	}
}

// BookingCompletedEvent is published when a confirmed booking has ended
type BookingCompletedEvent struct {
	shared.BaseDomainEvent
	BookingID uuid.UUID `json:"booking_id"`
	Reference string    `json:"reference"`
}

// NewBookingCompletedEvent creates a new BookingCompletedEvent
func NewBookingCompletedEvent(b *Booking) *BookingCompletedEvent {
	return &BookingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCompleted, AggregateTypeBooking, b.ID),
		BookingID:       b.ID,
		Reference:       b.Reference,
	}
}
