package room

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents whether a room can currently be booked
type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

const (
	MinCapacity = 1
	MaxCapacity = 500
)

// Room is a bookable meeting room
type Room struct {
	shared.BaseAggregateRoot
	Name             string          `gorm:"type:varchar(100);not null"`
	Slug             string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description      string          `gorm:"type:text"`
	Location         string          `gorm:"type:varchar(200);index"`
	Floor            int             `gorm:"not null;default:0"`
	Capacity         int             `gorm:"not null"`
	HourlyRate       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ImageKey         string          `gorm:"type:varchar(500)"`
	RequiresApproval bool            `gorm:"not null;default:false"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'active';index"`
	AmenityIDs       []uuid.UUID     `gorm:"-"`
}

// TableName returns the table name for GORM
func (Room) TableName() string {
	return "rooms"
}

// Details holds the editable descriptive fields of a room
type Details struct {
	Name             string
	Description      string
	Location         string
	Floor            int
	Capacity         int
	HourlyRate       decimal.Decimal
	RequiresApproval bool
}

// NewRoom creates an active room. The slug is derived from the name.
func NewRoom(d Details) (*Room, error) {
	r := &Room{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            StatusActive,
		AmenityIDs:        []uuid.UUID{},
	}
	if err := r.apply(d); err != nil {
		return nil, err
	}
	r.Slug = Slugify(r.Name)
	if r.Slug == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Room name must contain letters or digits")
	}
	r.AddDomainEvent(NewRoomCreatedEvent(r))
	return r, nil
}

// Update replaces the descriptive fields. The slug stays stable unless RenameSlug is called.
func (r *Room) Update(d Details) error {
	if err := r.apply(d); err != nil {
		return err
	}
	r.IncrementVersion()
	r.AddDomainEvent(NewRoomUpdatedEvent(r))
	return nil
}

// RenameSlug sets an explicit slug
func (r *Room) RenameSlug(slug string) error {
	normalized := Slugify(slug)
	if normalized == "" || normalized != slug {
		return shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and single dashes")
	}
	r.Slug = normalized
	r.IncrementVersion()
	return nil
}

// SetAmenities replaces the amenity set, dropping duplicates
func (r *Room) SetAmenities(ids []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	r.AmenityIDs = out
	r.IncrementVersion()
}

// HasAmenity reports whether the room offers the amenity
func (r *Room) HasAmenity(id uuid.UUID) bool {
	for _, a := range r.AmenityIDs {
		if a == id {
			return true
		}
	}
	return false
}

// SetImage points the room at an uploaded image object
func (r *Room) SetImage(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Image key cannot be empty")
	}
	r.ImageKey = key
	r.IncrementVersion()
	return nil
}

// ClearImage removes the image reference
func (r *Room) ClearImage() {
	r.ImageKey = ""
	r.IncrementVersion()
}

// Activate opens the room for booking
func (r *Room) Activate() error {
	return r.transition(StatusActive)
}

// Deactivate hides the room from the public catalog
func (r *Room) Deactivate() error {
	return r.transition(StatusInactive)
}

// StartMaintenance keeps the room listed for admins but blocks new bookings
func (r *Room) StartMaintenance() error {
	return r.transition(StatusMaintenance)
}

// ChangeStatus dispatches to the matching transition
func (r *Room) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be one of: active, inactive, maintenance")
	}
	return r.transition(status)
}

func (r *Room) transition(to Status) error {
	if r.Status == to {
		return shared.NewDomainError("INVALID_STATE", "Room is already "+string(to))
	}
	from := r.Status
	r.Status = to
	r.IncrementVersion()
	r.AddDomainEvent(NewRoomStatusChangedEvent(r, from))
	return nil
}

// IsBookable reports whether new bookings are accepted
func (r *Room) IsBookable() bool {
	return r.Status == StatusActive
}

// PriceFor returns the cost of occupying the room for d, rounded to cents
func (r *Room) PriceFor(d time.Duration) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	minutes := decimal.NewFromInt(int64(d / time.Minute))
	return r.HourlyRate.Mul(minutes).Div(decimal.NewFromInt(60)).Round(2)
}

func (r *Room) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Room name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Room name cannot exceed 100 characters")
	}
	if d.Capacity < MinCapacity || d.Capacity > MaxCapacity {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity must be between 1 and 500")
	}
	if d.HourlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}
	if utf8.RuneCountInString(d.Location) > 200 {
		return shared.NewDomainError("INVALID_LOCATION", "Location cannot exceed 200 characters")
	}

	r.Name = name
	r.Description = strings.TrimSpace(d.Description)
	r.Location = strings.TrimSpace(d.Location)
	r.Floor = d.Floor
	r.Capacity = d.Capacity
	r.HourlyRate = d.HourlyRate.Round(2)
	r.RequiresApproval = d.RequiresApproval
	return nil
}
