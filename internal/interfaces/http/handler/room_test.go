package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/booking"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/application/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleRoom() *room.RoomResponse {
	return &room.RoomResponse{
		ID:         uuid.New(),
		Name:       "Atlas",
		Slug:       "atlas",
		Capacity:   8,
		HourlyRate: decimal.NewFromInt(25),
		Status:     "active",
		Amenities:  []room.AmenityResponse{},
	}
}

func TestRoomHandler_PublicList(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(nil)
	router.GET("/rooms", h.List)

	r := sampleRoom()
	rooms.On("List", mock.Anything, mock.MatchedBy(func(f room.RoomListFilter) bool {
		return f.MinCapacity == 6 && f.Page == 2 && f.PageSize == 5
	}), false).Return(&room.RoomListResult{Items: []room.RoomResponse{*r}, Total: 11}, nil)

	w := perform(router, http.MethodGet, "/rooms?min_capacity=6&page=2&page_size=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var items []room.RoomResponse
	resp := decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "atlas", items[0].Slug)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, &dto.Meta{Total: 11, Page: 2, PageSize: 5, TotalPages: 3}, resp.Meta)
	rooms.AssertExpectations(t)
}

func TestRoomHandler_AdminListSeesAllStatuses(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(asAdmin(uuid.New()))
	router.GET("/admin/rooms", h.List)

	rooms.On("List", mock.Anything, mock.Anything, true).Return(&room.RoomListResult{Items: []room.RoomResponse{}}, nil)

	w := perform(router, http.MethodGet, "/admin/rooms?status=maintenance", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	rooms.AssertExpectations(t)
}

func TestRoomHandler_ListRejectsBadFilter(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(nil)
	router.GET("/rooms", h.List)

	w := perform(router, http.MethodGet, "/rooms?amenity_ids=projector", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorInfo(t, w).Code)
	rooms.AssertNotCalled(t, "List")
}

func TestRoomHandler_Get(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(nil)
	router.GET("/rooms/:id", h.Get)

	r := sampleRoom()
	missing := uuid.New()
	rooms.On("Get", mock.Anything, r.ID, false).Return(r, nil)
	rooms.On("Get", mock.Anything, missing, false).Return((*room.RoomResponse)(nil), shared.ErrNotFound)

	w := perform(router, http.MethodGet, "/rooms/"+r.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got room.RoomResponse
	decode(t, w, &got)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, got.HourlyRate.Equal(decimal.NewFromInt(25)))

	w = perform(router, http.MethodGet, "/rooms/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandler_GetBySlug(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(nil)
	router.GET("/rooms/slug/:slug", h.GetBySlug)

	rooms.On("GetBySlug", mock.Anything, "atlas").Return(sampleRoom(), nil)

	w := perform(router, http.MethodGet, "/rooms/slug/atlas", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	rooms.AssertExpectations(t)
}

func TestRoomHandler_Availability(t *testing.T) {
	avail := new(mockAvailabilityService)
	h := NewRoomHandler(nil, avail)
	router := newTestRouter(nil)
	router.GET("/rooms/:id/availability", h.Availability)
	roomID := uuid.New()

	t.Run("date required", func(t *testing.T) {
		w := perform(router, http.MethodGet, "/rooms/"+roomID.String()+"/availability", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		info := errorInfo(t, w)
		require.Len(t, info.Details, 1)
		assert.Equal(t, "date", info.Details[0].Field)
	})

	t.Run("date must be a calendar date", func(t *testing.T) {
		w := perform(router, http.MethodGet, "/rooms/"+roomID.String()+"/availability?date=2026-02-30", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("slots", func(t *testing.T) {
		avail.On("Availability", mock.Anything, roomID, "2026-06-01").Return(&booking.AvailabilityResponse{
			RoomID:      roomID,
			Date:        "2026-06-01",
			Timezone:    "Europe/Berlin",
			SlotMinutes: 30,
		}, nil).Once()

		w := perform(router, http.MethodGet, "/rooms/"+roomID.String()+"/availability?date=2026-06-01", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got booking.AvailabilityResponse
		decode(t, w, &got)
		assert.Equal(t, 30, got.SlotMinutes)
	})
}

func TestRoomHandler_Create(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(asAdmin(uuid.New()))
	router.POST("/admin/rooms", h.Create)

	t.Run("validation", func(t *testing.T) {
		w := perform(router, http.MethodPost, "/admin/rooms", map[string]any{"name": "Atlas", "capacity": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		rooms.AssertNotCalled(t, "Create")
	})

	t.Run("slug taken", func(t *testing.T) {
		rooms.On("Create", mock.Anything, mock.MatchedBy(func(r room.CreateRoomRequest) bool { return r.Slug == "taken" })).
			Return((*room.RoomResponse)(nil), shared.NewDomainError("SLUG_TAKEN", "Slug is already in use")).Once()

		w := perform(router, http.MethodPost, "/admin/rooms", map[string]any{"name": "Atlas", "slug": "taken", "capacity": 4})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "SLUG_TAKEN", errorInfo(t, w).Code)
	})

	t.Run("created", func(t *testing.T) {
		rooms.On("Create", mock.Anything, mock.MatchedBy(func(r room.CreateRoomRequest) bool {
			return r.Name == "Atlas" && r.HourlyRate.Equal(decimal.RequireFromString("25.50"))
		})).Return(sampleRoom(), nil).Once()

		w := perform(router, http.MethodPost, "/admin/rooms", `{"name":"Atlas","capacity":8,"hourly_rate":"25.50"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestRoomHandler_Delete(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(asAdmin(uuid.New()))
	router.DELETE("/admin/rooms/:id", h.Delete)

	busy, free := uuid.New(), uuid.New()
	rooms.On("Delete", mock.Anything, busy).Return(shared.NewDomainError("ROOM_HAS_BOOKINGS", "Room has upcoming bookings"))
	rooms.On("Delete", mock.Anything, free).Return(nil)

	w := perform(router, http.MethodDelete, "/admin/rooms/"+busy.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(router, http.MethodDelete, "/admin/rooms/"+free.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoomHandler_ImageFlow(t *testing.T) {
	rooms := new(mockRoomService)
	h := NewRoomHandler(rooms, nil)
	router := newTestRouter(asAdmin(uuid.New()))
	router.POST("/admin/rooms/:id/image/upload-url", h.ImageUploadURL)
	router.PUT("/admin/rooms/:id/image", h.ConfirmImage)
	id := uuid.New()

	rooms.On("CreateImageUploadURL", mock.Anything, id, room.ImageUploadRequest{ContentType: "image/gif", Size: 10}).
		Return((*media.UploadURL)(nil), shared.NewDomainError("UNSUPPORTED_MEDIA_TYPE", "Unsupported file type"))
	rooms.On("ConfirmImage", mock.Anything, id, room.ConfirmImageRequest{StorageKey: "rooms/other/x.png"}).
		Return((*room.RoomResponse)(nil), shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this resource"))

	w := perform(router, http.MethodPost, "/admin/rooms/"+id.String()+"/image/upload-url", map[string]any{"content_type": "image/gif", "size": 10})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = perform(router, http.MethodPut, "/admin/rooms/"+id.String()+"/image", map[string]any{"storage_key": "rooms/other/x.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	info := errorInfo(t, w)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "storage_key", info.Details[0].Field)
}

func TestAmenityHandler_List(t *testing.T) {
	amenities := new(mockAmenityService)
	h := NewAmenityHandler(amenities)
	router := newTestRouter(nil)
	router.GET("/amenities", h.List)

	amenities.On("List", mock.Anything, room.AmenityListFilter{}).
		Return([]room.AmenityResponse{{ID: uuid.New(), Name: "Projector"}}, int64(1), nil)

	w := perform(router, http.MethodGet, "/amenities", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 100, resp.Meta.PageSize)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestAmenityHandler_CreateDuplicate(t *testing.T) {
	amenities := new(mockAmenityService)
	h := NewAmenityHandler(amenities)
	router := newTestRouter(asAdmin(uuid.New()))
	router.POST("/admin/amenities", h.Create)

	amenities.On("Create", mock.Anything, room.CreateAmenityRequest{Name: "Projector"}).
		Return((*room.AmenityResponse)(nil), shared.NewDomainError("AMENITY_EXISTS", "An amenity with this name already exists"))

	w := perform(router, http.MethodPost, "/admin/amenities", map[string]any{"name": "Projector"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AMENITY_EXISTS", errorInfo(t, w).Code)
}
