package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// LimitsResponse are plan limits in API units. Zero means unlimited.
type LimitsResponse struct {
	BookingsPerMonth int `json:"bookings_per_month"`
	MaxBookingHours  int `json:"max_booking_hours"`
	HorizonDays      int `json:"horizon_days"`
}

// PlanResponse represents a plan of the catalog
type PlanResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" swaggertype:"string" example:"19.00"`
	Paid         bool            `json:"paid"`
	Limits       LimitsResponse  `json:"limits"`
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             uuid.UUID      `json:"user_id"`
	Plan               string         `json:"plan"`
	EffectivePlan      string         `json:"effective_plan"`
	Status             string         `json:"status"`
	CurrentPeriodStart *time.Time     `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time     `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool           `json:"cancel_at_period_end"`
	CanceledAt         *time.Time     `json:"canceled_at,omitempty"`
	HasBillingAccount  bool           `json:"has_billing_account"`
	Limits             LimitsResponse `json:"limits"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// AdminSubscriptionResponse adds provider identifiers for the back-office
type AdminSubscriptionResponse struct {
	SubscriptionResponse
	StripeCustomerID     string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `json:"stripe_subscription_id,omitempty"`
}

// CheckoutRequest selects the plan to buy
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required,oneof=pro business"`
}

// CheckoutResponse is the hosted checkout page to redirect to
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PortalResponse is the billing portal page to redirect to
type PortalResponse struct {
	URL string `json:"url"`
}

// SubscriptionListFilter holds back-office subscription list parameters
type SubscriptionListFilter struct {
	Plan     string `form:"plan" binding:"omitempty,oneof=free pro business"`
	Status   string `form:"status" binding:"omitempty,oneof=active trialing past_due canceled incomplete"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OverrideRequest sets plan and status of a subscription directly
type OverrideRequest struct {
	Plan   string `json:"plan" binding:"required,oneof=free pro business"`
	Status string `json:"status" binding:"required,oneof=active trialing past_due canceled incomplete"`
}

func toLimitsResponse(l billing.Limits) LimitsResponse {
	return LimitsResponse{
		BookingsPerMonth: l.BookingsPerMonth,
		MaxBookingHours:  int(l.MaxBookingLength / time.Hour),
		HorizonDays:      int(l.BookingHorizon / (24 * time.Hour)),
	}
}

func toPlanResponse(p billing.Plan) PlanResponse {
	return PlanResponse{
		ID:           string(p.ID),
		Name:         p.Name,
		Description:  p.Description,
		MonthlyPrice: p.MonthlyPrice,
		Paid:         p.ID.IsPaid(),
		Limits:       toLimitsResponse(p.Limits),
	}
}

func toSubscriptionResponse(s *billing.Subscription, catalog *billing.Catalog, now time.Time) SubscriptionResponse {
	effective := s.EffectivePlan(now)
	return SubscriptionResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		Plan:               string(s.Plan),
		EffectivePlan:      string(effective),
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CanceledAt:         s.CanceledAt,
		HasBillingAccount:  s.StripeCustomerID != "",
		Limits:             toLimitsResponse(catalog.LimitsFor(effective)),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func toAdminSubscriptionResponse(s *billing.Subscription, catalog *billing.Catalog, now time.Time) AdminSubscriptionResponse {
	return AdminSubscriptionResponse{
		SubscriptionResponse: toSubscriptionResponse(s, catalog, now),
		StripeCustomerID:     s.StripeCustomerID,
		StripeSubscriptionID: s.StripeSubscriptionID,
	}
}
