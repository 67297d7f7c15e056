package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/booking"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/application/room"
	"github.com/roombook/backend/internal/interfaces/http/middleware"
)

// RoomService is the room catalog as seen by the HTTP layer
type RoomService interface {
	Create(ctx context.Context, req room.CreateRoomRequest) (*room.RoomResponse, error)
	Get(ctx context.Context, id uuid.UUID, admin bool) (*room.RoomResponse, error)
	GetBySlug(ctx context.Context, slug string) (*room.RoomResponse, error)
	List(ctx context.Context, f room.RoomListFilter, admin bool) (*room.RoomListResult, error)
	Update(ctx context.Context, id uuid.UUID, req room.UpdateRoomRequest) (*room.RoomResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, req room.SetStatusRequest) (*room.RoomResponse, error)
	SetAmenities(ctx context.Context, id uuid.UUID, req room.SetAmenitiesRequest) (*room.RoomResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateImageUploadURL(ctx context.Context, id uuid.UUID, req room.ImageUploadRequest) (*media.UploadURL, error)
	ConfirmImage(ctx context.Context, id uuid.UUID, req room.ConfirmImageRequest) (*room.RoomResponse, error)
	RemoveImage(ctx context.Context, id uuid.UUID) (*room.RoomResponse, error)
}

// AvailabilityService answers which slots of a day are free
type AvailabilityService interface {
	Availability(ctx context.Context, roomID uuid.UUID, date string) (*booking.AvailabilityResponse, error)
}

// RoomHandler serves the public room catalog and its back-office management
type RoomHandler struct {
	BaseHandler
	rooms        RoomService
	availability AvailabilityService
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(rooms RoomService, availability AvailabilityService) *RoomHandler {
	return &RoomHandler{rooms: rooms, availability: availability}
}

// List handles GET /rooms and GET /admin/rooms. Only administrators see
// rooms that are not active or can filter by status.
// @Summary      List rooms
// @Description  Retrieve a paginated list of rooms. Public callers only see active rooms.
// @Tags         rooms
// @Produce      json
// @Param        search query string false "Search in name, description and location"
// @Param        status query string false "Status filter (administrators only)" Enums(active, inactive, maintenance)
// @Param        min_capacity query int false "Minimum capacity" minimum(1)
// @Param        location query string false "Location filter"
// @Param        amenity_ids query []string false "Rooms having all of these amenities" collectionFormat(multi)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(name, capacity, hourly_rate, floor, created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]room.RoomResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /rooms [get]
// @Router       /admin/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	var f room.RoomListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	result, err := h.rooms.List(c.Request.Context(), f, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, f.Page, f.PageSize)
}

// Get handles GET /rooms/:id
// @Summary      Get room by ID
// @Description  Retrieve one room with its amenities
// @Tags         rooms
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /rooms/{id} [get]
// @Router       /admin/rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.rooms.Get(c.Request.Context(), id, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetBySlug handles GET /rooms/slug/:slug
// @Summary      Get room by slug
// @Description  Retrieve one active room by its URL slug
// @Tags         rooms
// @Produce      json
// @Param        slug path string true "Room slug"
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /rooms/slug/{slug} [get]
func (h *RoomHandler) GetBySlug(c *gin.Context) {
	resp, err := h.rooms.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Availability handles GET /rooms/:id/availability?date=YYYY-MM-DD
// @Summary      Get room availability
// @Description  List the bookable slots of one day and whether each is free
// @Tags         rooms
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Param        date query string true "Day (YYYY-MM-DD, site time zone)" format(date)
// @Success      200 {object} dto.Response{data=booking.AvailabilityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /rooms/{id}/availability [get]
func (h *RoomHandler) Availability(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q booking.AvailabilityQuery
	if !h.bindQuery(c, &q) {
		return
	}
	resp, err := h.availability.Availability(c.Request.Context(), id, q.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /admin/rooms
// @Summary      Create a room
// @Description  Add a room to the catalog. A slug is derived from the name when none is given.
// @Tags         admin-rooms
// @Accept       json
// @Produce      json
// @Param        request body room.CreateRoomRequest true "Room creation request"
// @Success      201 {object} dto.Response{data=room.RoomResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req room.CreateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /admin/rooms/:id
// @Summary      Update a room
// @Description  Replace the details of a room
// @Tags         admin-rooms
// @Accept       json
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Param        request body room.UpdateRoomRequest true "Room update request"
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req room.UpdateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.rooms.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetStatus handles PUT /admin/rooms/:id/status
// @Summary      Change room status
// @Description  Activate a room or take it out of service
// @Tags         admin-rooms
// @Accept       json
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Param        request body room.SetStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id}/status [put]
func (h *RoomHandler) SetStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req room.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.rooms.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetAmenities handles PUT /admin/rooms/:id/amenities
// @Summary      Set room amenities
// @Description  Replace the amenities of a room
// @Tags         admin-rooms
// @Accept       json
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Param        request body room.SetAmenitiesRequest true "Amenity IDs"
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id}/amenities [put]
func (h *RoomHandler) SetAmenities(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req room.SetAmenitiesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.rooms.SetAmenities(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /admin/rooms/:id
// @Summary      Delete a room
// @Description  Delete a room that has no upcoming bookings
// @Tags         admin-rooms
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.rooms.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImageUploadURL handles POST /admin/rooms/:id/image/upload-url
// @Summary      Request a room image upload URL
// @Description  Get a presigned URL to upload a room image to
// @Tags         admin-rooms
// @Accept       json
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Param        request body room.ImageUploadRequest true "File to upload"
// @Success      200 {object} dto.Response{data=media.UploadURL}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id}/image/upload-url [post]
func (h *RoomHandler) ImageUploadURL(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req room.ImageUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.rooms.CreateImageUploadURL(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmImage handles PUT /admin/rooms/:id/image
// @Summary      Set room image
// @Description  Reference an uploaded image from the room
// @Tags         admin-rooms
// @Accept       json
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Param        request body room.ConfirmImageRequest true "Uploaded object"
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id}/image [put]
func (h *RoomHandler) ConfirmImage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req room.ConfirmImageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.rooms.ConfirmImage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveImage handles DELETE /admin/rooms/:id/image
// @Summary      Remove room image
// @Description  Clear the image of a room
// @Tags         admin-rooms
// @Produce      json
// @Param        id path string true "Room ID" format(uuid)
// @Success      200 {object} dto.Response{data=room.RoomResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/rooms/{id}/image [delete]
func (h *RoomHandler) RemoveImage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.rooms.RemoveImage(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
