package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomAmenityModel links a room to one of its amenities
type RoomAmenityModel struct {
	RoomID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	AmenityID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RoomAmenityModel) TableName() string {
	return "room_amenities"
}

// RoomAmenityModels builds the link rows for a room
func RoomAmenityModels(roomID uuid.UUID, amenityIDs []uuid.UUID, now time.Time) []RoomAmenityModel {
	links := make([]RoomAmenityModel, 0, len(amenityIDs))
	for _, id := range amenityIDs {
		links = append(links, RoomAmenityModel{RoomID: roomID, AmenityID: id, CreatedAt: now})
	}
	return links
}
