package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// Filter keys understood by BookingRepository.FindAll
const (
	FilterRoomID = "room_id" // uuid.UUID
	FilterUserID = "user_id" // uuid.UUID
	FilterStatus = "status"  // Status
	FilterFrom   = "from"    // time.Time, bookings ending after
	FilterTo     = "to"      // time.Time, bookings starting before
)

// BookingRepository defines the interface for booking persistence
type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByReference(ctx context.Context, reference string) (*Booking, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Booking, int64, error)
	FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Booking, int64, error)

	// FindOverlapping returns active bookings of the room that overlap r.
	// excludeID, when set, skips the booking being rescheduled.
	FindOverlapping(ctx context.Context, roomID uuid.UUID, r shared.TimeRange, excludeID *uuid.UUID) ([]Booking, error)

	// FindActiveForRoomBetween returns active bookings of the room intersecting [from, to)
	FindActiveForRoomBetween(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]Booking, error)

	// CountForUserBetween counts non-cancelled bookings of the user starting in [from, to)
	CountForUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)

	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountByStatus(ctx context.Context) (map[Status]int64, error)
	CountStartingBetween(ctx context.Context, from, to time.Time) (int64, error)

	// CompletePast marks confirmed bookings that ended before now as completed
	CompletePast(ctx context.Context, now time.Time) (int64, error)

	HasFutureForRoom(ctx context.Context, roomID uuid.UUID, now time.Time) (bool, error)
}
