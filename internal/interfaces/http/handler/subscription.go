package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/billing"
)

// SubscriptionService is the plan catalog and subscription lifecycle
type SubscriptionService interface {
	ListPlans() []billing.PlanResponse
	GetMine(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error)
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req billing.CheckoutRequest) (*billing.CheckoutResponse, error)
	CreatePortalSession(ctx context.Context, userID uuid.UUID) (*billing.PortalResponse, error)
	CancelAtPeriodEnd(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error)
	Resume(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error)
	List(ctx context.Context, f billing.SubscriptionListFilter) ([]billing.AdminSubscriptionResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*billing.AdminSubscriptionResponse, error)
	Override(ctx context.Context, adminID, id uuid.UUID, req billing.OverrideRequest) (*billing.AdminSubscriptionResponse, error)
}

// SubscriptionHandler handles plan and subscription endpoints
type SubscriptionHandler struct {
	BaseHandler
	subscriptions SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptions SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// ListPlans handles GET /plans
// @Summary      List plans
// @Description  Retrieve the plan catalog with prices and limits
// @Tags         plans
// @Produce      json
// @Success      200 {object} dto.Response{data=[]billing.PlanResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	h.Success(c, h.subscriptions.ListPlans())
}

// GetMine handles GET /subscription
// @Summary      Get my subscription
// @Description  Retrieve the caller's subscription and effective limits
// @Tags         subscription
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.SubscriptionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscription [get]
func (h *SubscriptionHandler) GetMine(c *gin.Context) {
	h.forCaller(c, h.subscriptions.GetMine)
}

// Checkout handles POST /subscription/checkout
// @Summary      Start a checkout
// @Description  Create a hosted checkout session for a paid plan. Changing an existing paid plan goes through the billing portal.
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Param        request body billing.CheckoutRequest true "Plan to buy"
// @Success      200 {object} dto.Response{data=billing.CheckoutResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscription/checkout [post]
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req billing.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.subscriptions.CreateCheckoutSession(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Portal handles POST /subscription/portal
// @Summary      Open the billing portal
// @Description  Create a billing portal session for the caller's billing account
// @Tags         subscription
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.PortalResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscription/portal [post]
func (h *SubscriptionHandler) Portal(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := h.subscriptions.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /subscription/cancel
// @Summary      Cancel my subscription
// @Description  Cancel the paid subscription at the end of the current period
// @Tags         subscription
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.SubscriptionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.forCaller(c, h.subscriptions.CancelAtPeriodEnd)
}

// Resume handles POST /subscription/resume
// @Summary      Resume my subscription
// @Description  Undo a cancellation that has not taken effect yet
// @Tags         subscription
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.SubscriptionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscription/resume [post]
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.forCaller(c, h.subscriptions.Resume)
}

// AdminList handles GET /admin/subscriptions
// @Summary      List subscriptions
// @Description  Retrieve a filtered, paginated list of subscriptions
// @Tags         admin-subscriptions
// @Produce      json
// @Param        plan query string false "Plan filter" Enums(free, pro, business)
// @Param        status query string false "Status filter" Enums(active, trialing, past_due, canceled, incomplete)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]billing.AdminSubscriptionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/subscriptions [get]
func (h *SubscriptionHandler) AdminList(c *gin.Context) {
	var f billing.SubscriptionListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.subscriptions.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// AdminGet handles GET /admin/subscriptions/:id
// @Summary      Get subscription by ID
// @Description  Retrieve a subscription with its provider identifiers
// @Tags         admin-subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} dto.Response{data=billing.AdminSubscriptionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/subscriptions/{id} [get]
func (h *SubscriptionHandler) AdminGet(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.subscriptions.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Override handles PUT /admin/subscriptions/:id
// @Summary      Override a subscription
// @Description  Set plan and status directly, bypassing the payment provider
// @Tags         admin-subscriptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Param        request body billing.OverrideRequest true "Plan and status"
// @Success      200 {object} dto.Response{data=billing.AdminSubscriptionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/subscriptions/{id} [put]
func (h *SubscriptionHandler) Override(c *gin.Context) {
	adminID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req billing.OverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.subscriptions.Override(c.Request.Context(), adminID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// forCaller runs a body-less operation on the caller's own subscription
func (h *SubscriptionHandler) forCaller(c *gin.Context, op func(context.Context, uuid.UUID) (*billing.SubscriptionResponse, error)) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := op(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
