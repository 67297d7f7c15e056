package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/identity"
)

// UserAdminService manages user accounts in the back-office
type UserAdminService interface {
	List(ctx context.Context, f identity.UserListFilter) ([]identity.UserResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*identity.UserResponse, error)
	SetRole(ctx context.Context, actorID, id uuid.UUID, req identity.SetRoleRequest) (*identity.UserResponse, error)
	Suspend(ctx context.Context, actorID, id uuid.UUID, req identity.SuspendRequest) (*identity.UserResponse, error)
	Reactivate(ctx context.Context, actorID, id uuid.UUID) (*identity.UserResponse, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

// UserAdminHandler handles /admin/users
type UserAdminHandler struct {
	BaseHandler
	users UserAdminService
}

// NewUserAdminHandler creates a new UserAdminHandler
func NewUserAdminHandler(users UserAdminService) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

// List handles GET /admin/users
// @Summary      List users
// @Description  Retrieve a filtered, paginated list of user profiles
// @Tags         admin-users
// @Produce      json
// @Param        search query string false "Search in email and name"
// @Param        role query string false "Role filter" Enums(user, admin)
// @Param        status query string false "Status filter" Enums(active, suspended)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, email, full_name, last_seen_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]identity.UserResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserAdminHandler) List(c *gin.Context) {
	var f identity.UserListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.users.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// Get handles GET /admin/users/:id
// @Summary      Get user by ID
// @Description  Retrieve a user profile with its plan
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [get]
func (h *UserAdminHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetRole handles PUT /admin/users/:id/role
// @Summary      Change user role
// @Description  Grant or revoke administrator rights. Administrators cannot change their own role.
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body identity.SetRoleRequest true "New role"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/role [put]
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}
	var req identity.SetRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.users.SetRole(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Suspend handles POST /admin/users/:id/suspend
// @Summary      Suspend a user
// @Description  Block a user from the application
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body identity.SuspendRequest false "Suspension reason"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/suspend [post]
func (h *UserAdminHandler) Suspend(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}
	var req identity.SuspendRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.users.Suspend(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reactivate handles POST /admin/users/:id/reactivate
// @Summary      Reactivate a user
// @Description  Lift a suspension
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/reactivate [post]
func (h *UserAdminHandler) Reactivate(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}
	resp, err := h.users.Reactivate(c.Request.Context(), actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /admin/users/:id
// @Summary      Delete a user
// @Description  Delete a profile together with its subscription
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [delete]
func (h *UserAdminHandler) Delete(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *UserAdminHandler) actorAndTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actorID, ok := h.caller(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	return actorID, id, ok
}
