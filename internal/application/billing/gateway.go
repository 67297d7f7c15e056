package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/shared"
)

var (
	ErrInvalidSignature   = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
	ErrPlanNotPurchasable = shared.NewDomainError("PLAN_NOT_PURCHASABLE", "This plan cannot be purchased")
	ErrBillingDisabled    = shared.NewDomainError("BILLING_DISABLED", "Billing is not configured")
	ErrNoCustomer         = shared.NewDomainError("NO_BILLING_ACCOUNT", "No billing account exists yet")
)

// PaymentGateway is the subset of the payment provider used by the billing services
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (string, error)
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*billing.ProviderState, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*billing.ProviderState, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// CustomerInput describes the customer created for a profile
type CustomerInput struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// CheckoutInput describes a subscription checkout
type CheckoutInput struct {
	CustomerID string
	UserID     uuid.UUID
	Plan       billing.PlanID
}

// CheckoutSession is a hosted checkout page the user is redirected to
type CheckoutSession struct {
	ID  string
	URL string
}

// Webhook event types handled by StripeWebhookService
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionCreated  = "customer.subscription.created"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// WebhookEvent is a verified provider event decoded into provider-neutral parts.
// Exactly one of Subscription, Checkout or Invoice is set for handled types.
type WebhookEvent struct {
	ID           string
	Type         string
	UserID       uuid.UUID // from metadata or client reference, Nil when absent
	Subscription *billing.ProviderState
	Checkout     *CheckoutCompleted
	Invoice      *InvoiceNotice
}

// CheckoutCompleted is the payload of a finished checkout
type CheckoutCompleted struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
}

// InvoiceNotice is the payload of an invoice payment result
type InvoiceNotice struct {
	InvoiceID      string
	CustomerID     string
	SubscriptionID string
	PeriodEnd      *time.Time
}
