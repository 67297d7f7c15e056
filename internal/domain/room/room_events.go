package room

import (
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// AggregateTypeRoom is the aggregate type name for rooms
const AggregateTypeRoom = "Room"

// Event type constants for Room
const (
	EventTypeRoomCreated       = "RoomCreated"
	EventTypeRoomUpdated       = "RoomUpdated"
	EventTypeRoomStatusChanged = "RoomStatusChanged"
)

// RoomCreatedEvent is published when a new room is added to the catalog
type RoomCreatedEvent struct {
	shared.BaseDomainEvent
	RoomID   uuid.UUID `json:"room_id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Capacity int       `json:"capacity"`
}

// NewRoomCreatedEvent creates a new RoomCreatedEvent
func NewRoomCreatedEvent(r *Room) *RoomCreatedEvent {
	return &RoomCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomCreated, AggregateTypeRoom, r.ID),
		RoomID:          r.ID,
		Name:            r.Name,
		Slug:            r.Slug,
		Capacity:        r.Capacity,
	}
}

// RoomUpdatedEvent is published when a room's details change
type RoomUpdatedEvent struct {
	shared.BaseDomainEvent
	RoomID   uuid.UUID `json:"room_id"`
	Name     string    `json:"name"`
	Capacity int       `json:"capacity"`
}

// NewRoomUpdatedEvent creates a new RoomUpdatedEvent
func NewRoomUpdatedEvent(r *Room) *RoomUpdatedEvent {
	return &RoomUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomUpdated, AggregateTypeRoom, r.ID),
		RoomID:          r.ID,
		Name:            r.Name,
		Capacity:        r.Capacity,
	}
}

// RoomStatusChangedEvent is published when a room is opened, closed or put in maintenance
type RoomStatusChangedEvent struct {
	shared.BaseDomainEvent
	RoomID    uuid.UUID `json:"room_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewRoomStatusChangedEvent creates a new RoomStatusChangedEvent
func NewRoomStatusChangedEvent(r *Room, old Status) *RoomStatusChangedEvent {
	return &RoomStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomStatusChanged, AggregateTypeRoom, r.ID),
		RoomID:          r.ID,
		OldStatus:       old,
		NewStatus:       r.Status,
	}
}
