package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/application/admin"
)

// DashboardService builds the back-office overview
type DashboardService interface {
	Overview(ctx context.Context) (*admin.OverviewResponse, error)
}

// DashboardHandler handles GET /admin/overview
type DashboardHandler struct {
	BaseHandler
	dashboard DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview returns the system-wide counts
// @Summary      Get the dashboard overview
// @Description  Counts of rooms, users, bookings and subscriptions
// @Tags         admin-dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=admin.OverviewResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	resp, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
