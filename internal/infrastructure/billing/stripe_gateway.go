package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appbilling "github.com/roombook/backend/internal/application/billing"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// Metadata keys written on Stripe objects so webhooks can be traced back to a profile
const (
	MetadataUserID = "user_id"
	MetadataPlan   = "plan"
)

// StripeGateway implements application billing.PaymentGateway with the Stripe API
type StripeGateway struct {
	api         *client.API
	cfg         config.StripeConfig
	planByPrice map[string]billing.PlanID
	logger      *zap.Logger
}

// Option configures a StripeGateway
type Option func(*gatewayOptions)

type gatewayOptions struct {
	backends *stripe.Backends
}

// WithBackends routes API calls through the given backends instead of api.stripe.com
func WithBackends(backends *stripe.Backends) Option {
	return func(o *gatewayOptions) {
		o.backends = backends
	}
}

// NewStripeGateway validates the configuration and creates a Stripe client
func NewStripeGateway(cfg config.StripeConfig, logger *zap.Logger, opts ...Option) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe: webhook secret is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	planByPrice := make(map[string]billing.PlanID, len(cfg.PriceIDs))
	for plan, price := range cfg.PriceIDs {
		id := billing.PlanID(plan)
		if !id.IsPaid() || price == "" {
			continue
		}
		planByPrice[price] = id
	}
	for _, id := range []billing.PlanID{billing.PlanPro, billing.PlanBusiness} {
		if cfg.PriceIDs[string(id)] == "" {
			return nil, fmt.Errorf("stripe: price ID for plan %q is required", id)
		}
	}

	o := &gatewayOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &StripeGateway{
		api:         client.New(cfg.SecretKey, o.backends),
		cfg:         cfg,
		planByPrice: planByPrice,
		logger:      logger,
	}, nil
}

// CreateCustomer creates a Stripe customer for a profile
func (g *StripeGateway) CreateCustomer(ctx context.Context, input appbilling.CustomerInput) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(input.Email),
	}
	if input.Name != "" {
		params.Name = stripe.String(input.Name)
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, input.UserID.String())

	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	g.logger.Info("Created Stripe customer",
		zap.String("customer_id", cust.ID),
		zap.String("user_id", input.UserID.String()))
	return cust.ID, nil
}

// CreateCheckoutSession starts a hosted checkout for a paid plan
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, input appbilling.CheckoutInput) (*appbilling.CheckoutSession, error) {
	priceID := g.cfg.PriceIDs[string(input.Plan)]
	if !input.Plan.IsPaid() || priceID == "" {
		return nil, appbilling.ErrPlanNotPurchasable
	}
	if input.CustomerID == "" {
		return nil, appbilling.ErrNoCustomer
	}

	metadata := map[string]string{
		MetadataUserID: input.UserID.String(),
		MetadataPlan:   string(input.Plan),
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(input.CustomerID),
		ClientReferenceID: stripe.String(input.UserID.String()),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("session_id", sess.ID),
		zap.String("customer_id", input.CustomerID),
		zap.String("plan", string(input.Plan)))
	return &appbilling.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession opens the billing portal for a customer
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", appbilling.ErrNoCustomer
	}
	params := &stripe.BillingPortalSessionParams{
		Customer: stripe.String(customerID),
	}
	if g.cfg.PortalReturnURL != "" {
		params.ReturnURL = stripe.String(g.cfg.PortalReturnURL)
	}
	params.Context = ctx

	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// SetCancelAtPeriodEnd schedules or clears the cancellation of a subscription
func (g *StripeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*billing.ProviderState, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to update subscription: %w", err)
	}

	g.logger.Info("Updated Stripe subscription",
		zap.String("subscription_id", sub.ID),
		zap.Bool("cancel_at_period_end", cancel))
	return g.providerState(sub)
}

// GetSubscription fetches the current state of a subscription
func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*billing.ProviderState, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to get subscription: %w", err)
	}
	return g.providerState(sub)
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event object
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*appbilling.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.cfg.WebhookSecret)
	if err != nil {
		g.logger.Warn("Stripe webhook rejected", zap.Error(err))
		return nil, appbilling.ErrInvalidSignature
	}

	out := &appbilling.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case appbilling.EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode checkout session: %w", err)
		}
		out.Checkout = &appbilling.CheckoutCompleted{SessionID: sess.ID}
		if sess.Customer != nil {
			out.Checkout.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			out.Checkout.SubscriptionID = sess.Subscription.ID
		}
		out.UserID = parseUserID(sess.ClientReferenceID)
		if out.UserID == uuid.Nil {
			out.UserID = parseUserID(sess.Metadata[MetadataUserID])
		}

	case appbilling.EventSubscriptionCreated, appbilling.EventSubscriptionUpdated, appbilling.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode subscription: %w", err)
		}
		state, err := g.providerState(&sub)
		if err != nil {
			return nil, err
		}
		out.Subscription = state
		out.UserID = parseUserID(sub.Metadata[MetadataUserID])

	case appbilling.EventInvoicePaid, appbilling.EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode invoice: %w", err)
		}
		notice := &appbilling.InvoiceNotice{InvoiceID: inv.ID}
		if inv.Customer != nil {
			notice.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			notice.SubscriptionID = inv.Subscription.ID
		}
		notice.PeriodEnd = invoicePeriodEnd(&inv)
		out.Invoice = notice
	}
	return out, nil
}

func (g *StripeGateway) providerState(sub *stripe.Subscription) (*billing.ProviderState, error) {
	plan, err := g.planOf(sub)
	if err != nil {
		return nil, err
	}
	state := &billing.ProviderState{
		SubscriptionID:    sub.ID,
		Plan:              plan,
		Status:            MapSubscriptionStatus(sub.Status),
		PeriodStart:       unixTime(sub.CurrentPeriodStart),
		PeriodEnd:         unixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CanceledAt:        unixTime(sub.CanceledAt),
	}
	if sub.Customer != nil {
		state.CustomerID = sub.Customer.ID
	}
	return state, nil
}

// planOf resolves the plan from the subscription's price, then from metadata
func (g *StripeGateway) planOf(sub *stripe.Subscription) (billing.PlanID, error) {
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil || item.Price == nil {
				continue
			}
			if plan, ok := g.planByPrice[item.Price.ID]; ok {
				return plan, nil
			}
		}
	}
	if plan := billing.PlanID(sub.Metadata[MetadataPlan]); plan.IsPaid() {
		return plan, nil
	}
	return "", fmt.Errorf("stripe: subscription %s has no price known to any plan", sub.ID)
}

// MapSubscriptionStatus folds Stripe's statuses onto the ones stored locally
func MapSubscriptionStatus(status stripe.SubscriptionStatus) billing.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return billing.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return billing.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPaused:
		return billing.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return billing.SubscriptionStatusCanceled
	default:
		return billing.SubscriptionStatusIncomplete
	}
}

func invoicePeriodEnd(inv *stripe.Invoice) *time.Time {
	var end int64
	if inv.Lines != nil {
		for _, line := range inv.Lines.Data {
			if line != nil && line.Period != nil && line.Period.End > end {
				end = line.Period.End
			}
		}
	}
	return unixTime(end)
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func parseUserID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Ensure StripeGateway implements PaymentGateway
var _ appbilling.PaymentGateway = (*StripeGateway)(nil)
