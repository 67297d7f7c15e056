package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/room"
)

// amenityPageSize is the page size the amenity list uses when none is asked for
const amenityPageSize = 100

// AmenityService manages the amenity catalog
type AmenityService interface {
	Create(ctx context.Context, req room.CreateAmenityRequest) (*room.AmenityResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*room.AmenityResponse, error)
	List(ctx context.Context, f room.AmenityListFilter) ([]room.AmenityResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req room.UpdateAmenityRequest) (*room.AmenityResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AmenityHandler handles amenity endpoints
type AmenityHandler struct {
	BaseHandler
	amenities AmenityService
}

// NewAmenityHandler creates a new AmenityHandler
func NewAmenityHandler(amenities AmenityService) *AmenityHandler {
	return &AmenityHandler{amenities: amenities}
}

// List handles GET /amenities and GET /admin/amenities
// @Summary      List amenities
// @Description  Retrieve a paginated list of amenities ordered by name
// @Tags         amenities
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]room.AmenityResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /amenities [get]
// @Router       /admin/amenities [get]
func (h *AmenityHandler) List(c *gin.Context) {
	var f room.AmenityListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.amenities.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = amenityPageSize
	}
	h.SuccessWithMeta(c, items, total, f.Page, pageSize)
}

// Get handles GET /admin/amenities/:id
// @Summary      Get amenity by ID
// @Description  Retrieve one amenity
// @Tags         admin-amenities
// @Produce      json
// @Param        id path string true "Amenity ID" format(uuid)
// @Success      200 {object} dto.Response{data=room.AmenityResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/amenities/{id} [get]
func (h *AmenityHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.amenities.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /admin/amenities
// @Summary      Create an amenity
// @Description  Add an amenity to the catalog. Names are unique.
// @Tags         admin-amenities
// @Accept       json
// @Produce      json
// @Param        request body room.CreateAmenityRequest true "Amenity creation request"
// @Success      201 {object} dto.Response{data=room.AmenityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/amenities [post]
func (h *AmenityHandler) Create(c *gin.Context) {
	var req room.CreateAmenityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.amenities.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /admin/amenities/:id
// @Summary      Update an amenity
// @Description  Replace name, icon and description of an amenity
// @Tags         admin-amenities
// @Accept       json
// @Produce      json
// @Param        id path string true "Amenity ID" format(uuid)
// @Param        request body room.UpdateAmenityRequest true "Amenity update request"
// @Success      200 {object} dto.Response{data=room.AmenityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/amenities/{id} [put]
func (h *AmenityHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req room.UpdateAmenityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.amenities.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /admin/amenities/:id
// @Summary      Delete an amenity
// @Description  Delete an amenity and detach it from every room
// @Tags         admin-amenities
// @Produce      json
// @Param        id path string true "Amenity ID" format(uuid)
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/amenities/{id} [delete]
func (h *AmenityHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.amenities.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
