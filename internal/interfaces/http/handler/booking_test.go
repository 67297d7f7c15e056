package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/booking"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBookingHandler_Create(t *testing.T) {
	userID := uuid.New()
	roomID := uuid.New()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "end before start",
			body:       map[string]any{"room_id": roomID, "title": "Standup", "attendees": 3, "start_at": start, "end_at": start.Add(-time.Hour)},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "malformed body",
			body:       `{"room_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name:       "slot taken",
			body:       map[string]any{"room_id": roomID, "title": "Standup", "attendees": 3, "start_at": start, "end_at": start.Add(time.Hour)},
			serviceErr: shared.NewDomainError("ROOM_UNAVAILABLE", "The room is already booked for this time"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "ROOM_UNAVAILABLE",
		},
		{
			name:       "monthly quota",
			body:       map[string]any{"room_id": roomID, "title": "Standup", "attendees": 3, "start_at": start, "end_at": start.Add(time.Hour)},
			serviceErr: shared.ErrQuotaExceeded,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "QUOTA_EXCEEDED",
		},
		{
			name:       "created",
			body:       map[string]any{"room_id": roomID, "title": "Standup", "attendees": 3, "start_at": start, "end_at": start.Add(time.Hour)},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := new(mockBookingService)
			h := NewBookingHandler(bookings)
			router := newTestRouter(asUser(userID))
			router.POST("/bookings", h.Create)

			bookings.On("Create", mock.Anything, userID, mock.MatchedBy(func(r booking.CreateBookingRequest) bool {
				return r.RoomID == roomID && r.StartAt.Equal(start)
			})).Return(&booking.BookingResponse{ID: uuid.New(), RoomID: roomID, Status: "confirmed"}, tt.serviceErr).Maybe()

			w := perform(router, http.MethodPost, "/bookings", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorInfo(t, w).Code)
			}
		})
	}
}

func TestBookingHandler_ListMine(t *testing.T) {
	userID := uuid.New()
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asUser(userID))
	router.GET("/bookings", h.ListMine)

	bookings.On("ListMine", mock.Anything, userID, booking.MyBookingsFilter{Scope: "past"}).
		Return([]booking.BookingResponse{{ID: uuid.New()}, {ID: uuid.New()}}, int64(2), nil)

	w := perform(router, http.MethodGet, "/bookings?scope=past", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []booking.BookingResponse
	resp := decode(t, w, &items)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)

	w = perform(router, http.MethodGet, "/bookings?scope=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_GetOtherUsersBooking(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asUser(userID))
	router.GET("/bookings/:id", h.Get)

	bookings.On("GetForUser", mock.Anything, userID, false, id).Return((*booking.BookingResponse)(nil), shared.ErrNotFound)

	w := perform(router, http.MethodGet, "/bookings/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_AdminUsesOwnerRoutes(t *testing.T) {
	adminID := uuid.New()
	id := uuid.New()
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asAdmin(adminID))
	router.GET("/bookings/:id", h.Get)

	bookings.On("GetForUser", mock.Anything, adminID, true, id).Return(&booking.BookingResponse{ID: id}, nil)

	w := perform(router, http.MethodGet, "/bookings/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	bookings.AssertExpectations(t)
}

func TestBookingHandler_Cancel(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asUser(userID))
	router.POST("/bookings/:id/cancel", h.Cancel)

	t.Run("without body", func(t *testing.T) {
		bookings.On("Cancel", mock.Anything, userID, false, id, booking.CancelBookingRequest{}).
			Return(&booking.BookingResponse{ID: id, Status: "cancelled"}, nil).Once()

		w := perform(router, http.MethodPost, "/bookings/"+id.String()+"/cancel", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("with reason after the window closed", func(t *testing.T) {
		bookings.On("Cancel", mock.Anything, userID, false, id, booking.CancelBookingRequest{Reason: "ill"}).
			Return((*booking.BookingResponse)(nil), shared.NewDomainError("CANCELLATION_CLOSED", "Too late to cancel")).Once()

		w := perform(router, http.MethodPost, "/bookings/"+id.String()+"/cancel", map[string]any{"reason": "ill"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "CANCELLATION_CLOSED", errorInfo(t, w).Code)
	})
}

func TestBookingHandler_AdminList(t *testing.T) {
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asAdmin(uuid.New()))
	router.GET("/admin/bookings", h.AdminList)

	bookings.On("List", mock.Anything, booking.AdminBookingFilter{From: "2026-06-01", To: "2026-06-30", Status: "pending"}).
		Return([]booking.BookingResponse{}, int64(0), nil)

	w := perform(router, http.MethodGet, "/admin/bookings?from=2026-06-01&to=2026-06-30&status=pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	bookings.AssertExpectations(t)

	w = perform(router, http.MethodGet, "/admin/bookings?from=01.06.2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_Confirm(t *testing.T) {
	adminID := uuid.New()
	id := uuid.New()
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asAdmin(adminID))
	router.POST("/admin/bookings/:id/confirm", h.Confirm)

	bookings.On("Confirm", mock.Anything, adminID, id).Return((*booking.BookingResponse)(nil), shared.ErrInvalidState)

	w := perform(router, http.MethodPost, "/admin/bookings/"+id.String()+"/confirm", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", errorInfo(t, w).Code)
}

func TestBookingHandler_AdminDelete(t *testing.T) {
	adminID := uuid.New()
	id := uuid.New()
	bookings := new(mockBookingService)
	h := NewBookingHandler(bookings)
	router := newTestRouter(asAdmin(adminID))
	router.DELETE("/admin/bookings/:id", h.AdminDelete)

	bookings.On("Delete", mock.Anything, adminID, id).Return(nil)

	w := perform(router, http.MethodDelete, "/admin/bookings/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
