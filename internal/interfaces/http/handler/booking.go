package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/booking"
	"github.com/roombook/backend/internal/interfaces/http/middleware"
)

// BookingService is the booking workflow as seen by the HTTP layer
type BookingService interface {
	Create(ctx context.Context, userID uuid.UUID, req booking.CreateBookingRequest) (*booking.BookingResponse, error)
	GetForUser(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID) (*booking.BookingResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, f booking.MyBookingsFilter) ([]booking.BookingResponse, int64, error)
	Update(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID, req booking.UpdateBookingRequest) (*booking.BookingResponse, error)
	Cancel(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID, req booking.CancelBookingRequest) (*booking.BookingResponse, error)
	List(ctx context.Context, f booking.AdminBookingFilter) ([]booking.BookingResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*booking.BookingResponse, error)
	Confirm(ctx context.Context, adminID, id uuid.UUID) (*booking.BookingResponse, error)
	AdminCancel(ctx context.Context, adminID, id uuid.UUID, req booking.CancelBookingRequest) (*booking.BookingResponse, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error
}

// BookingHandler serves the caller's bookings and the back-office booking list
type BookingHandler struct {
	BaseHandler
	bookings BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /bookings
// @Summary      Book a room
// @Description  Book a room for a time range. The booking is confirmed at once unless the room requires approval.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body booking.CreateBookingRequest true "Booking request"
// @Success      201 {object} dto.Response{data=booking.BookingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req booking.CreateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.bookings.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMine handles GET /bookings
// @Summary      List my bookings
// @Description  Retrieve the caller's bookings, upcoming first
// @Tags         bookings
// @Produce      json
// @Param        scope query string false "Time scope" Enums(upcoming, past, all) default(upcoming)
// @Param        status query string false "Status filter" Enums(pending, confirmed, cancelled, completed)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]booking.BookingResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var f booking.MyBookingsFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.bookings.ListMine(c.Request.Context(), userID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// Get handles GET /bookings/:id. Bookings of other users are reported as
// missing unless the caller is an administrator.
// @Summary      Get booking by ID
// @Description  Retrieve one of the caller's bookings
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.bookings.GetForUser(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /bookings/:id
// @Summary      Update a booking
// @Description  Edit title, notes and attendees of a booking. A changed time range reschedules it.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Param        request body booking.UpdateBookingRequest true "Booking update request"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req booking.UpdateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.bookings.Update(c.Request.Context(), userID, middleware.IsAdmin(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /bookings/:id/cancel. The body is optional.
// @Summary      Cancel a booking
// @Description  Cancel one of the caller's bookings before it starts
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Param        request body booking.CancelBookingRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := h.cancelRequest(c)
	if !ok {
		return
	}
	resp, err := h.bookings.Cancel(c.Request.Context(), userID, middleware.IsAdmin(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdminList handles GET /admin/bookings
// @Summary      List all bookings
// @Description  Retrieve a filtered, paginated list of bookings across rooms and users
// @Tags         admin-bookings
// @Produce      json
// @Param        room_id query string false "Room filter" format(uuid)
// @Param        user_id query string false "User filter" format(uuid)
// @Param        status query string false "Status filter" Enums(pending, confirmed, cancelled, completed)
// @Param        from query string false "First day (YYYY-MM-DD, site time zone)" format(date)
// @Param        to query string false "Last day (YYYY-MM-DD, site time zone)" format(date)
// @Param        search query string false "Search in title and reference"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(start_at, created_at, status, total_price)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]booking.BookingResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/bookings [get]
func (h *BookingHandler) AdminList(c *gin.Context) {
	var f booking.AdminBookingFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.bookings.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// AdminGet handles GET /admin/bookings/:id
// @Summary      Get any booking
// @Description  Retrieve a booking of any user
// @Tags         admin-bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/bookings/{id} [get]
func (h *BookingHandler) AdminGet(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm handles POST /admin/bookings/:id/confirm
// @Summary      Confirm a booking
// @Description  Approve a pending booking
// @Tags         admin-bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	adminID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.bookings.Confirm(c.Request.Context(), adminID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdminCancel handles POST /admin/bookings/:id/cancel
// @Summary      Cancel any booking
// @Description  Cancel a booking on behalf of its owner
// @Tags         admin-bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Param        request body booking.CancelBookingRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/bookings/{id}/cancel [post]
func (h *BookingHandler) AdminCancel(c *gin.Context) {
	adminID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := h.cancelRequest(c)
	if !ok {
		return
	}
	resp, err := h.bookings.AdminCancel(c.Request.Context(), adminID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdminDelete handles DELETE /admin/bookings/:id
// @Summary      Delete a booking
// @Description  Remove a booking permanently
// @Tags         admin-bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/bookings/{id} [delete]
func (h *BookingHandler) AdminDelete(c *gin.Context) {
	adminID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), adminID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *BookingHandler) cancelRequest(c *gin.Context) (booking.CancelBookingRequest, bool) {
	var req booking.CancelBookingRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	return req, h.bindJSON(c, &req)
}
