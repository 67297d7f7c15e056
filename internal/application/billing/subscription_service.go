package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrAlreadySubscribed is returned when checking out while a paid provider
// subscription is in effect. Plan changes go through the billing portal so the
// existing subscription is modified instead of a second one being started.
var ErrAlreadySubscribed = shared.NewDomainError("ALREADY_SUBSCRIBED", "You already have a paid subscription; use the billing portal to change your plan")

// SubscriptionService exposes plans and the caller's subscription and
// drives the hosted payment flows. A nil gateway disables the paid flows.
type SubscriptionService struct {
	subscriptions billing.SubscriptionRepository
	profiles      identity.ProfileRepository
	gateway       PaymentGateway
	catalog       *billing.Catalog
	events        *appevent.Dispatcher
	logger        *zap.Logger
	now           func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	subscriptions billing.SubscriptionRepository,
	profiles identity.ProfileRepository,
	gateway PaymentGateway,
	catalog *billing.Catalog,
	events *appevent.Dispatcher,
	logger *zap.Logger,
) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		subscriptions: subscriptions,
		profiles:      profiles,
		gateway:       gateway,
		catalog:       catalog,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// ListPlans returns the plan catalog in display order
func (s *SubscriptionService) ListPlans() []PlanResponse {
	plans := s.catalog.Plans()
	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanResponse(p)
	}
	return out
}

// GetMine returns the caller's subscription, creating the free one if it is missing
func (s *SubscriptionService) GetMine(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toSubscriptionResponse(sub, s.catalog, s.now())
	return &resp, nil
}

// CreateCheckoutSession starts a hosted checkout for a paid plan. The
// provider customer is created on first use and remembered.
func (s *SubscriptionService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "checkout",
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrPlan, req.Plan,
	)
	defer span.End()

	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}
	plan := billing.PlanID(req.Plan)
	if !plan.IsPaid() {
		return nil, ErrPlanNotPurchasable
	}
	sub, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	effective := sub.EffectivePlan(s.now())
	if effective == plan || (effective.IsPaid() && sub.StripeSubscriptionID != "") {
		return nil, ErrAlreadySubscribed
	}
	if err := s.ensureCustomer(ctx, sub); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutInput{
		CustomerID: sub.StripeCustomerID,
		UserID:     userID,
		Plan:       plan,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession opens the provider's billing portal for the caller
func (s *SubscriptionService) CreatePortalSession(ctx context.Context, userID uuid.UUID) (*PortalResponse, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}
	sub, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.StripeCustomerID == "" {
		return nil, ErrNoCustomer
	}
	url, err := s.gateway.CreatePortalSession(ctx, sub.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	return &PortalResponse{URL: url}, nil
}

// CancelAtPeriodEnd schedules the paid subscription to end with its period
func (s *SubscriptionService) CancelAtPeriodEnd(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	return s.setCancelAtPeriodEnd(ctx, userID, true)
}

// Resume clears a scheduled cancellation
func (s *SubscriptionService) Resume(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	return s.setCancelAtPeriodEnd(ctx, userID, false)
}

func (s *SubscriptionService) setCancelAtPeriodEnd(ctx context.Context, userID uuid.UUID, cancel bool) (*SubscriptionResponse, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}
	sub, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cancel {
		err = sub.ScheduleCancel()
	} else {
		err = sub.Resume()
	}
	if err != nil {
		return nil, err
	}

	state, err := s.gateway.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, cancel)
	if err != nil {
		return nil, err
	}
	if err := sub.SyncFromProvider(*state); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, sub)

	s.logger.Info("Subscription cancellation updated",
		zap.String("user_id", userID.String()),
		zap.Bool("cancel_at_period_end", cancel),
	)
	resp := toSubscriptionResponse(sub, s.catalog, s.now())
	return &resp, nil
}

// List returns subscriptions for the back-office
func (s *SubscriptionService) List(ctx context.Context, f SubscriptionListFilter) ([]AdminSubscriptionResponse, int64, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Plan != "" {
		filter = filter.With(billing.FilterPlan, billing.PlanID(f.Plan))
	}
	if f.Status != "" {
		filter = filter.With(billing.FilterStatus, billing.SubscriptionStatus(f.Status))
	}

	subs, total, err := s.subscriptions.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	out := make([]AdminSubscriptionResponse, len(subs))
	for i := range subs {
		out[i] = toAdminSubscriptionResponse(&subs[i], s.catalog, now)
	}
	return out, total, nil
}

// Get returns one subscription for the back-office
func (s *SubscriptionService) Get(ctx context.Context, id uuid.UUID) (*AdminSubscriptionResponse, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAdminSubscriptionResponse(sub, s.catalog, s.now())
	return &resp, nil
}

// Override sets plan and status without involving the payment provider.
// A later provider event for the same subscription overwrites it again.
func (s *SubscriptionService) Override(ctx context.Context, adminID, id uuid.UUID, req OverrideRequest) (*AdminSubscriptionResponse, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sub.AdminOverride(billing.PlanID(req.Plan), billing.SubscriptionStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, sub)

	s.logger.Info("Subscription overridden",
		zap.String("admin_id", adminID.String()),
		zap.String("subscription_id", id.String()),
		zap.String("plan", req.Plan),
		zap.String("status", req.Status),
	)
	resp := toAdminSubscriptionResponse(sub, s.catalog, s.now())
	return &resp, nil
}

func (s *SubscriptionService) mine(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	sub, err := s.subscriptions.FindByUserID(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	sub, err = billing.NewFreeSubscription(userID)
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.subscriptions.FindByUserID(ctx, userID)
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) ensureCustomer(ctx context.Context, sub *billing.Subscription) error {
	if sub.StripeCustomerID != "" {
		return nil
	}
	profile, err := s.profiles.FindByID(ctx, sub.UserID)
	if err != nil {
		return err
	}
	customerID, err := s.gateway.CreateCustomer(ctx, CustomerInput{
		UserID: profile.ID,
		Email:  profile.Email,
		Name:   profile.FullName,
	})
	if err != nil {
		return err
	}
	if err := sub.AttachCustomer(customerID); err != nil {
		return err
	}
	return s.subscriptions.Save(ctx, sub)
}
