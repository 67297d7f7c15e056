package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/shopspring/decimal"
)

// AmenityResponse represents an amenity in API responses
type AmenityResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateAmenityRequest represents a request to create an amenity
type CreateAmenityRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Icon        string `json:"icon" binding:"max=50"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateAmenityRequest represents a request to update an amenity
type UpdateAmenityRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Icon        string `json:"icon" binding:"max=50"`
	Description string `json:"description" binding:"max=500"`
}

// AmenityListFilter holds amenity list parameters
type AmenityListFilter struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RoomResponse represents a room in API responses
type RoomResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Description      string            `json:"description,omitempty"`
	Location         string            `json:"location,omitempty"`
	Floor            int               `json:"floor"`
	Capacity         int               `json:"capacity"`
	HourlyRate       decimal.Decimal   `json:"hourly_rate" swaggertype:"string" example:"45.00"`
	ImageURL         string            `json:"image_url,omitempty"`
	RequiresApproval bool              `json:"requires_approval"`
	Status           string            `json:"status"`
	Amenities        []AmenityResponse `json:"amenities"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// RoomListResult is a page of rooms; it is also the unit stored in the room cache
type RoomListResult struct {
	Items []RoomResponse `json:"items"`
	Total int64          `json:"total"`
}

// CreateRoomRequest represents a request to create a room
type CreateRoomRequest struct {
	Name             string          `json:"name" binding:"required,min=1,max=100"`
	Slug             string          `json:"slug" binding:"omitempty,max=120"`
	Description      string          `json:"description" binding:"max=5000"`
	Location         string          `json:"location" binding:"max=200"`
	Floor            int             `json:"floor"`
	Capacity         int             `json:"capacity" binding:"required,min=1,max=500"`
	HourlyRate       decimal.Decimal `json:"hourly_rate" swaggertype:"string" example:"45.00"`
	RequiresApproval bool            `json:"requires_approval"`
	AmenityIDs       []uuid.UUID     `json:"amenity_ids"`
}

// UpdateRoomRequest represents a request to update a room.
// An empty Slug keeps the current one.
type UpdateRoomRequest struct {
	Name             string          `json:"name" binding:"required,min=1,max=100"`
	Slug             string          `json:"slug" binding:"omitempty,max=120"`
	Description      string          `json:"description" binding:"max=5000"`
	Location         string          `json:"location" binding:"max=200"`
	Floor            int             `json:"floor"`
	Capacity         int             `json:"capacity" binding:"required,min=1,max=500"`
	HourlyRate       decimal.Decimal `json:"hourly_rate" swaggertype:"string" example:"45.00"`
	RequiresApproval bool            `json:"requires_approval"`
}

// RoomListFilter holds room list parameters. Status is ignored for public callers.
type RoomListFilter struct {
	Search      string   `form:"search" binding:"omitempty,max=100"`
	Status      string   `form:"status" binding:"omitempty,oneof=active inactive maintenance"`
	MinCapacity int      `form:"min_capacity" binding:"omitempty,min=1,max=500"`
	Location    string   `form:"location" binding:"omitempty,max=200"`
	AmenityIDs  []string `form:"amenity_ids" binding:"omitempty,dive,uuid"`
	Page        int      `form:"page" binding:"omitempty,min=1"`
	PageSize    int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string   `form:"order_by" binding:"omitempty,oneof=name capacity hourly_rate floor created_at"`
	OrderDir    string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SetStatusRequest changes the status of a room
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive maintenance"`
}

// SetAmenitiesRequest replaces the amenities of a room
type SetAmenitiesRequest struct {
	AmenityIDs []uuid.UUID `json:"amenity_ids" binding:"max=50"`
}

// ImageUploadRequest declares the image the client is about to upload
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// ConfirmImageRequest references an uploaded room image
type ConfirmImageRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

func toAmenityResponse(a *room.Amenity) AmenityResponse {
	return AmenityResponse{
		ID:          a.ID,
		Name:        a.Name,
		Icon:        a.Icon,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toRoomResponse(r *room.Room, imageURL string, amenities map[uuid.UUID]*room.Amenity) RoomResponse {
	resp := RoomResponse{
		ID:               r.ID,
		Name:             r.Name,
		Slug:             r.Slug,
		Description:      r.Description,
		Location:         r.Location,
		Floor:            r.Floor,
		Capacity:         r.Capacity,
		HourlyRate:       r.HourlyRate,
		ImageURL:         imageURL,
		RequiresApproval: r.RequiresApproval,
		Status:           string(r.Status),
		Amenities:        make([]AmenityResponse, 0, len(r.AmenityIDs)),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	for _, id := range r.AmenityIDs {
		if a, ok := amenities[id]; ok {
			resp.Amenities = append(resp.Amenities, toAmenityResponse(a))
		}
	}
	return resp
}

func (r CreateRoomRequest) details() room.Details {
	return room.Details{
		Name:             r.Name,
		Description:      r.Description,
		Location:         r.Location,
		Floor:            r.Floor,
		Capacity:         r.Capacity,
		HourlyRate:       r.HourlyRate,
		RequiresApproval: r.RequiresApproval,
	}
}

func (r UpdateRoomRequest) details() room.Details {
	return room.Details{
		Name:             r.Name,
		Description:      r.Description,
		Location:         r.Location,
		Floor:            r.Floor,
		Capacity:         r.Capacity,
		HourlyRate:       r.HourlyRate,
		RequiresApproval: r.RequiresApproval,
	}
}
