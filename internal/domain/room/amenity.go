package room

import (
	"strings"
	"unicode/utf8"

	"github.com/roombook/backend/internal/domain/shared"
)

// Amenity is equipment or a feature a room can offer (projector, whiteboard, ...)
type Amenity struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Icon        string `gorm:"type:varchar(50)"`
	Description string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Amenity) TableName() string {
	return "amenities"
}

// NewAmenity creates a new amenity
func NewAmenity(name, icon, description string) (*Amenity, error) {
	a := &Amenity{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := a.apply(name, icon, description); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the amenity's descriptive fields
func (a *Amenity) Update(name, icon, description string) error {
	if err := a.apply(name, icon, description); err != nil {
		return err
	}
	a.IncrementVersion()
	return nil
}

func (a *Amenity) apply(name, icon, description string) error {
	name = strings.TrimSpace(name)
	icon = strings.TrimSpace(icon)
	description = strings.TrimSpace(description)

	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Amenity name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Amenity name cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(icon) > 50 {
		return shared.NewDomainError("INVALID_ICON", "Icon cannot exceed 50 characters")
	}
	if utf8.RuneCountInString(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	a.Name = name
	a.Icon = icon
	a.Description = description
	return nil
}
