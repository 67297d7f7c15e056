package identity

import (
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// AggregateTypeProfile is the aggregate type name for profiles
const AggregateTypeProfile = "Profile"

// Event type constants for Profile
const (
	EventTypeProfileCreated     = "ProfileCreated"
	EventTypeProfileRoleChanged = "ProfileRoleChanged"
	EventTypeProfileSuspended   = "ProfileSuspended"
	EventTypeProfileReactivated = "ProfileReactivated"
)

// ProfileCreatedEvent is published the first time a subject is seen
type ProfileCreatedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	Email     string    `json:"email"`
}

// NewProfileCreatedEvent creates a new ProfileCreatedEvent
func NewProfileCreatedEvent(p *Profile) *ProfileCreatedEvent {
	return &ProfileCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileCreated, AggregateTypeProfile, p.ID),
		ProfileID:       p.ID,
		Email:           p.Email,
	}
}

// ProfileRoleChangedEvent is published when a profile gains or loses admin access
type ProfileRoleChangedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	OldRole   Role      `json:"old_role"`
	NewRole   Role      `json:"new_role"`
}

// NewProfileRoleChangedEvent creates a new ProfileRoleChangedEvent
func NewProfileRoleChangedEvent(p *Profile, oldRole Role) *ProfileRoleChangedEvent {
	return &ProfileRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileRoleChanged, AggregateTypeProfile, p.ID),
		ProfileID:       p.ID,
		OldRole:         oldRole,
		NewRole:         p.Role,
	}
}

// ProfileSuspendedEvent is published when an admin suspends a profile
type ProfileSuspendedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
	Reason    string    `json:"reason,omitempty"`
}

// NewProfileSuspendedEvent creates a new ProfileSuspendedEvent
func NewProfileSuspendedEvent(p *Profile) *ProfileSuspendedEvent {
	return &ProfileSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileSuspended, AggregateTypeProfile, p.ID),
		ProfileID:       p.ID,
		Reason:          p.SuspendReason,
	}
}

// ProfileReactivatedEvent is published when a suspension is lifted
type ProfileReactivatedEvent struct {
	shared.BaseDomainEvent
	ProfileID uuid.UUID `json:"profile_id"`
}

// NewProfileReactivatedEvent creates a new ProfileReactivatedEvent
func NewProfileReactivatedEvent(p *Profile) *ProfileReactivatedEvent {
	return &ProfileReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileReactivated, AggregateTypeProfile, p.ID),
		ProfileID:       p.ID,
	}
}
