package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// Role is the access level of a profile inside the application
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ProfileStatus represents whether a profile may use the application
type ProfileStatus string

const (
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusSuspended ProfileStatus = "suspended"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)
)

// Profile is the application-side record of a person authenticated by the
// external identity provider. Its ID is the token subject.
type Profile struct {
	shared.BaseAggregateRoot
	Email         string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	FullName      string        `gorm:"type:varchar(100)"`
	Phone         string        `gorm:"type:varchar(30)"`
	AvatarKey     string        `gorm:"type:varchar(500)"`
	Role          Role          `gorm:"type:varchar(20);not null;default:'user'"`
	Status        ProfileStatus `gorm:"type:varchar(20);not null;default:'active'"`
	SuspendReason string        `gorm:"type:varchar(500)"`
	SuspendedAt   *time.Time
	LastSeenAt    *time.Time
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile creates the profile of a newly seen identity provider subject
func NewProfile(id uuid.UUID, email string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Profile ID cannot be empty")
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	p := &Profile{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Email:             email,
		Role:              RoleUser,
		Status:            ProfileStatusActive,
	}
	p.AddDomainEvent(NewProfileCreatedEvent(p))
	return p, nil
}

// UpdateDetails changes the user-editable fields of the profile
func (p *Profile) UpdateDetails(fullName, phone string) error {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	if utf8.RuneCountInString(fullName) > 100 {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 100 characters")
	}
	if phone != "" && !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}

	p.FullName = fullName
	p.Phone = phone
	p.IncrementVersion()
	return nil
}

// ChangeEmail keeps the profile in sync with the identity provider
func (p *Profile) ChangeEmail(email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if email == p.Email {
		return nil
	}
	p.Email = email
	p.IncrementVersion()
	return nil
}

// SetAvatar points the profile at an uploaded avatar object
func (p *Profile) SetAvatar(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar key cannot be empty")
	}
	p.AvatarKey = key
	p.IncrementVersion()
	return nil
}

// ClearAvatar removes the avatar reference
func (p *Profile) ClearAvatar() {
	if p.AvatarKey == "" {
		return
	}
	p.AvatarKey = ""
	p.IncrementVersion()
}

// PromoteToAdmin grants back-office access
func (p *Profile) PromoteToAdmin() error {
	if p.Role == RoleAdmin {
		return shared.NewDomainError("INVALID_STATE", "Profile is already an admin")
	}
	old := p.Role
	p.Role = RoleAdmin
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileRoleChangedEvent(p, old))
	return nil
}

// DemoteToUser revokes back-office access
func (p *Profile) DemoteToUser() error {
	if p.Role == RoleUser {
		return shared.NewDomainError("INVALID_STATE", "Profile is already a regular user")
	}
	old := p.Role
	p.Role = RoleUser
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileRoleChangedEvent(p, old))
	return nil
}

// SetRole dispatches to PromoteToAdmin or DemoteToUser
func (p *Profile) SetRole(role Role) error {
	switch role {
	case RoleAdmin:
		return p.PromoteToAdmin()
	case RoleUser:
		return p.DemoteToUser()
	default:
		return shared.NewDomainError("INVALID_ROLE", "Role must be 'user' or 'admin'")
	}
}

// Suspend blocks the profile from using the application
func (p *Profile) Suspend(reason string) error {
	if p.Status == ProfileStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Profile is already suspended")
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}
	now := time.Now().UTC()
	p.Status = ProfileStatusSuspended
	p.SuspendReason = reason
	p.SuspendedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileSuspendedEvent(p))
	return nil
}

// Reactivate lifts a suspension
func (p *Profile) Reactivate() error {
	if p.Status == ProfileStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Profile is already active")
	}
	p.Status = ProfileStatusActive
	p.SuspendReason = ""
	p.SuspendedAt = nil
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileReactivatedEvent(p))
	return nil
}

// Touch records activity without bumping the aggregate version
func (p *Profile) Touch(now time.Time) {
	now = now.UTC()
	p.LastSeenAt = &now
}

// IsAdmin reports whether the profile has back-office access
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsActive reports whether the profile is not suspended
func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

// CanBook reports whether the profile may create or change bookings
func (p *Profile) CanBook() bool {
	return p.IsActive()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if utf8.RuneCountInString(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
