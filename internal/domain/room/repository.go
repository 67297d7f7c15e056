package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// Filter keys understood by RoomRepository.FindAll
const (
	FilterStatus      = "status"       // Status
	FilterMinCapacity = "min_capacity" // int
	FilterLocation    = "location"     // string, case-insensitive contains
	FilterAmenityIDs  = "amenity_ids"  // []uuid.UUID, room must offer all of them
)

// RoomRepository defines the interface for room persistence.
// Rooms returned by finders have AmenityIDs populated.
type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	FindBySlug(ctx context.Context, slug string) (*Room, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Room, int64, error)

	// Save upserts the room row and replaces its amenity links
	Save(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id uuid.UUID) error

	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// AmenityRepository defines the interface for amenity persistence
type AmenityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Amenity, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Amenity, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Amenity, int64, error)
	Save(ctx context.Context, amenity *Amenity) error

	// Delete removes the amenity and every room link pointing at it
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByName is case-insensitive; excludeID skips the amenity being renamed
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}
