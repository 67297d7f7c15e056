package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest represents a request to book a room
type CreateBookingRequest struct {
	RoomID    uuid.UUID `json:"room_id" binding:"required"`
	Title     string    `json:"title" binding:"required,min=1,max=200"`
	Notes     string    `json:"notes" binding:"max=1000"`
	Attendees int       `json:"attendees" binding:"required,min=1,max=500"`
	StartAt   time.Time `json:"start_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
}

// UpdateBookingRequest edits a booking. A changed time range reschedules it.
type UpdateBookingRequest struct {
	Title     string    `json:"title" binding:"required,min=1,max=200"`
	Notes     string    `json:"notes" binding:"max=1000"`
	Attendees int       `json:"attendees" binding:"required,min=1,max=500"`
	StartAt   time.Time `json:"start_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
}

// CancelBookingRequest carries an optional cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// MyBookingsFilter holds the parameters of the caller's booking list
type MyBookingsFilter struct {
	Scope    string `form:"scope" binding:"omitempty,oneof=upcoming past all"`
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdminBookingFilter holds back-office booking list parameters.
// From and To are calendar dates in the site time zone.
type AdminBookingFilter struct {
	RoomID   string `form:"room_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	From     string `form:"from" binding:"omitempty,dateonly"`
	To       string `form:"to" binding:"omitempty,dateonly"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=start_at created_at status total_price"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AvailabilityQuery selects the day whose slots are listed
type AvailabilityQuery struct {
	Date string `form:"date" binding:"required,dateonly"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID           uuid.UUID       `json:"id"`
	Reference    string          `json:"reference"`
	RoomID       uuid.UUID       `json:"room_id"`
	RoomName     string          `json:"room_name,omitempty"`
	RoomSlug     string          `json:"room_slug,omitempty"`
	UserID       uuid.UUID       `json:"user_id"`
	Title        string          `json:"title"`
	Notes        string          `json:"notes,omitempty"`
	Attendees    int             `json:"attendees"`
	StartAt      time.Time       `json:"start_at"`
	EndAt        time.Time       `json:"end_at"`
	Status       string          `json:"status"`
	TotalPrice   decimal.Decimal `json:"total_price" swaggertype:"string" example:"90.00"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AvailabilityResponse lists the slots of one day for one room
type AvailabilityResponse struct {
	RoomID      uuid.UUID      `json:"room_id"`
	Date        string         `json:"date"`
	Timezone    string         `json:"timezone"`
	SlotMinutes int            `json:"slot_minutes"`
	Slots       []booking.Slot `json:"slots"`
}

func toBookingResponse(b *booking.Booking, r *room.Room) BookingResponse {
	resp := BookingResponse{
		ID:           b.ID,
		Reference:    b.Reference,
		RoomID:       b.RoomID,
		UserID:       b.UserID,
		Title:        b.Title,
		Notes:        b.Notes,
		Attendees:    b.Attendees,
		StartAt:      b.StartAt,
		EndAt:        b.EndAt,
		Status:       string(b.Status),
		TotalPrice:   b.TotalPrice,
		ConfirmedAt:  b.ConfirmedAt,
		CancelledAt:  b.CancelledAt,
		CancelReason: b.CancelReason,
		CompletedAt:  b.CompletedAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if r != nil {
		resp.RoomName = r.Name
		resp.RoomSlug = r.Slug
	}
	return resp
}
