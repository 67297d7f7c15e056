package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/admin"
	"github.com/roombook/backend/internal/application/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserAdminHandler_List(t *testing.T) {
	users := new(mockUserAdminService)
	h := NewUserAdminHandler(users)
	router := newTestRouter(asAdmin(uuid.New()))
	router.GET("/admin/users", h.List)

	users.On("List", mock.Anything, identity.UserListFilter{Role: "admin", PageSize: 10}).
		Return([]identity.UserResponse{{ProfileResponse: identity.ProfileResponse{ID: uuid.New(), Role: "admin"}}}, int64(1), nil)

	w := perform(router, http.MethodGet, "/admin/users?role=admin&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w, nil)
	assert.Equal(t, 10, resp.Meta.PageSize)

	w = perform(router, http.MethodGet, "/admin/users?role=owner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserAdminHandler_Guards(t *testing.T) {
	adminID := uuid.New()
	users := new(mockUserAdminService)
	h := NewUserAdminHandler(users)
	router := newTestRouter(asAdmin(adminID))
	router.PUT("/admin/users/:id/role", h.SetRole)
	router.POST("/admin/users/:id/suspend", h.Suspend)
	router.DELETE("/admin/users/:id", h.Delete)

	lastAdmin := shared.NewDomainError("LAST_ADMIN", "At least one administrator must remain")
	selfAction := shared.NewDomainError("SELF_ACTION", "You cannot perform this action on your own account")
	other := uuid.New()

	users.On("SetRole", mock.Anything, adminID, other, identity.SetRoleRequest{Role: "user"}).Return((*identity.UserResponse)(nil), lastAdmin)
	users.On("Suspend", mock.Anything, adminID, adminID, identity.SuspendRequest{}).Return((*identity.UserResponse)(nil), selfAction)
	users.On("Delete", mock.Anything, adminID, other).Return(nil)

	w := perform(router, http.MethodPut, "/admin/users/"+other.String()+"/role", map[string]any{"role": "user"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "LAST_ADMIN", errorInfo(t, w).Code)

	w = perform(router, http.MethodPost, "/admin/users/"+adminID.String()+"/suspend", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "SELF_ACTION", errorInfo(t, w).Code)

	w = perform(router, http.MethodDelete, "/admin/users/"+other.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	users.AssertExpectations(t)
}

func TestUserAdminHandler_SuspendAndReactivate(t *testing.T) {
	adminID := uuid.New()
	target := uuid.New()
	users := new(mockUserAdminService)
	h := NewUserAdminHandler(users)
	router := newTestRouter(asAdmin(adminID))
	router.POST("/admin/users/:id/suspend", h.Suspend)
	router.POST("/admin/users/:id/reactivate", h.Reactivate)

	now := time.Now().UTC()
	users.On("Suspend", mock.Anything, adminID, target, identity.SuspendRequest{Reason: "abuse"}).
		Return(&identity.UserResponse{ProfileResponse: identity.ProfileResponse{ID: target, Status: "suspended"}, SuspendReason: "abuse", SuspendedAt: &now}, nil)
	users.On("Reactivate", mock.Anything, adminID, target).
		Return(&identity.UserResponse{ProfileResponse: identity.ProfileResponse{ID: target, Status: "active"}}, nil)

	w := perform(router, http.MethodPost, "/admin/users/"+target.String()+"/suspend", map[string]any{"reason": "abuse"})
	require.Equal(t, http.StatusOK, w.Code)
	var got identity.UserResponse
	decode(t, w, &got)
	assert.Equal(t, "suspended", got.Status)
	assert.Equal(t, "abuse", got.SuspendReason)

	w = perform(router, http.MethodPost, "/admin/users/"+target.String()+"/reactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, "active", got.Status)
}

func TestDashboardHandler_Overview(t *testing.T) {
	dash := new(mockDashboardService)
	h := NewDashboardHandler(dash)
	router := newTestRouter(asAdmin(uuid.New()))
	router.GET("/admin/overview", h.Overview)

	dash.On("Overview", mock.Anything).Return(&admin.OverviewResponse{
		Rooms:    admin.RoomStats{Total: 5, ByStatus: map[string]int64{"active": 5}},
		Bookings: admin.BookingStats{Today: 3},
	}, nil).Once()

	w := perform(router, http.MethodGet, "/admin/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got admin.OverviewResponse
	decode(t, w, &got)
	assert.Equal(t, int64(5), got.Rooms.Total)
	assert.Equal(t, int64(3), got.Bookings.Today)

	dash.On("Overview", mock.Anything).Return((*admin.OverviewResponse)(nil), errors.New("db down")).Once()
	w = perform(router, http.MethodGet, "/admin/overview", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
