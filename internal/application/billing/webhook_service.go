package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultWebhookTTL = 72 * time.Hour
	webhookKeyPrefix  = "stripe:event:"
)

// WebhookObserver receives one call per delivery with the outcome label
type WebhookObserver interface {
	RecordWebhookEvent(eventType, outcome string)
}

// StripeWebhookService applies verified provider events to local subscriptions.
// Deliveries are de-duplicated by event ID; a failed delivery releases its
// key so the provider's retry is processed again.
type StripeWebhookService struct {
	gateway       PaymentGateway
	subscriptions billing.SubscriptionRepository
	idempotency   shared.IdempotencyStore
	ttl           time.Duration
	events        *appevent.Dispatcher
	observer      WebhookObserver
	logger        *zap.Logger
	now           func() time.Time
}

// StripeWebhookServiceConfig holds the dependencies of StripeWebhookService
type StripeWebhookServiceConfig struct {
	Gateway       PaymentGateway
	Subscriptions billing.SubscriptionRepository
	Idempotency   shared.IdempotencyStore
	// DedupTTL is how long processed event IDs are remembered
	DedupTTL time.Duration
	Events   *appevent.Dispatcher
	Observer WebhookObserver
	Logger   *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.DedupTTL
	if ttl <= 0 {
		ttl = defaultWebhookTTL
	}
	return &StripeWebhookService{
		gateway:       cfg.Gateway,
		subscriptions: cfg.Subscriptions,
		idempotency:   cfg.Idempotency,
		ttl:           ttl,
		events:        cfg.Events,
		observer:      cfg.Observer,
		logger:        logger,
		now:           time.Now,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and applies one delivery. A duplicate or an
// unhandled event type is acknowledged without changes. The result is nil
// when the delivery could not be verified.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected webhook delivery", zap.Error(err))
		s.observe("unknown", telemetry.OutcomeError)
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "webhook",
		telemetry.SpanAttrEventType, event.Type,
	)
	defer span.End()

	log := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)
	log.Info("Received webhook event")

	result := &WebhookResult{EventID: event.ID, EventType: event.Type}
	if !isHandled(event.Type) {
		s.observe(event.Type, telemetry.OutcomeIgnored)
		result.Message = "Event type not handled"
		return result, nil
	}

	key := webhookKeyPrefix + event.ID
	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, key, s.ttl)
		if err != nil {
			telemetry.RecordError(span, err)
			s.observe(event.Type, telemetry.OutcomeError)
			return result, err
		}
		if !fresh {
			log.Info("Webhook event already processed")
			s.observe(event.Type, telemetry.OutcomeDuplicate)
			result.Message = "Event already processed"
			return result, nil
		}
	}

	if err := s.handle(ctx, event); err != nil {
		if s.idempotency != nil {
			if ferr := s.idempotency.Forget(ctx, key); ferr != nil {
				log.Warn("Failed to release webhook key", zap.Error(ferr))
			}
		}
		log.Error("Failed to process webhook event", zap.Error(err))
		telemetry.RecordError(span, err)
		s.observe(event.Type, telemetry.OutcomeError)
		result.Message = "Processing failed"
		return result, err
	}

	s.observe(event.Type, telemetry.OutcomeSuccess)
	result.Processed = true
	return result, nil
}

func isHandled(eventType string) bool {
	switch eventType {
	case EventCheckoutCompleted,
		EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted,
		EventInvoicePaid, EventInvoicePaymentFailed:
		return true
	}
	return false
}

func (s *StripeWebhookService) handle(ctx context.Context, event *WebhookEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return s.onCheckoutCompleted(ctx, event)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return s.onSubscriptionChanged(ctx, event)
	case EventSubscriptionDeleted:
		return s.onSubscriptionDeleted(ctx, event)
	case EventInvoicePaid, EventInvoicePaymentFailed:
		return s.onInvoice(ctx, event)
	}
	return nil
}

func (s *StripeWebhookService) onCheckoutCompleted(ctx context.Context, event *WebhookEvent) error {
	c := event.Checkout
	if c == nil {
		return nil
	}
	sub, err := s.locate(ctx, "", event.UserID, c.CustomerID)
	if err != nil {
		return s.ignoreMissing(err, event)
	}
	if sub.StripeCustomerID == "" && c.CustomerID != "" {
		if err := sub.AttachCustomer(c.CustomerID); err != nil {
			return err
		}
	}
	if c.SubscriptionID != "" {
		state, err := s.gateway.GetSubscription(ctx, c.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.SyncFromProvider(*state); err != nil {
			return err
		}
	}
	return s.save(ctx, sub)
}

func (s *StripeWebhookService) onSubscriptionChanged(ctx context.Context, event *WebhookEvent) error {
	st := event.Subscription
	if st == nil {
		return nil
	}
	sub, err := s.locate(ctx, st.SubscriptionID, event.UserID, st.CustomerID)
	if err != nil {
		return s.ignoreMissing(err, event)
	}
	if st.SubscriptionID != "" && sub.StripeSubscriptionID != st.SubscriptionID {
		if sub.StripeSubscriptionID != "" {
			s.logger.Info("Ignoring update of superseded subscription",
				zap.String("stripe_subscription_id", st.SubscriptionID),
				zap.String("current", sub.StripeSubscriptionID),
			)
			return nil
		}
		// Matched by user or customer only, so the event may be a late one
		// for a subscription that has since ended. The provider's current
		// state decides.
		live, err := s.gateway.GetSubscription(ctx, st.SubscriptionID)
		if err != nil {
			return err
		}
		if live.Status == billing.SubscriptionStatusCanceled {
			s.logger.Info("Ignoring update of ended subscription",
				zap.String("stripe_subscription_id", st.SubscriptionID),
				zap.String("event_id", event.ID),
			)
			return nil
		}
		st = live
	}
	if err := sub.SyncFromProvider(*st); err != nil {
		return err
	}
	return s.save(ctx, sub)
}

func (s *StripeWebhookService) onSubscriptionDeleted(ctx context.Context, event *WebhookEvent) error {
	st := event.Subscription
	if st == nil {
		return nil
	}
	sub, err := s.locate(ctx, st.SubscriptionID, event.UserID, st.CustomerID)
	if err != nil {
		return s.ignoreMissing(err, event)
	}
	// The user may already have moved to a newer provider subscription
	if sub.StripeSubscriptionID != "" && sub.StripeSubscriptionID != st.SubscriptionID {
		s.logger.Info("Ignoring deletion of superseded subscription",
			zap.String("stripe_subscription_id", st.SubscriptionID),
			zap.String("current", sub.StripeSubscriptionID),
		)
		return nil
	}
	sub.MarkCanceled(s.now())
	return s.save(ctx, sub)
}

func (s *StripeWebhookService) onInvoice(ctx context.Context, event *WebhookEvent) error {
	inv := event.Invoice
	if inv == nil || inv.SubscriptionID == "" {
		return nil
	}
	sub, err := s.locate(ctx, inv.SubscriptionID, uuid.Nil, inv.CustomerID)
	if err != nil {
		return s.ignoreMissing(err, event)
	}
	if event.Type == EventInvoicePaid {
		sub.MarkPaid(inv.PeriodEnd)
	} else {
		sub.MarkPastDue()
	}
	return s.save(ctx, sub)
}

// locate finds the local subscription by provider subscription ID, then by
// user ID from the event metadata, then by provider customer ID.
func (s *StripeWebhookService) locate(ctx context.Context, subscriptionID string, userID uuid.UUID, customerID string) (*billing.Subscription, error) {
	if subscriptionID != "" {
		sub, err := s.subscriptions.FindByStripeSubscriptionID(ctx, subscriptionID)
		if err == nil || !errors.Is(err, shared.ErrNotFound) {
			return sub, err
		}
	}
	if userID != uuid.Nil {
		sub, err := s.subscriptions.FindByUserID(ctx, userID)
		if err == nil || !errors.Is(err, shared.ErrNotFound) {
			return sub, err
		}
	}
	if customerID != "" {
		return s.subscriptions.FindByStripeCustomerID(ctx, customerID)
	}
	return nil, shared.ErrNotFound
}

// ignoreMissing acknowledges events for subscriptions this system does not know
func (s *StripeWebhookService) ignoreMissing(err error, event *WebhookEvent) error {
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("No local subscription for webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return nil
	}
	return err
}

func (s *StripeWebhookService) save(ctx context.Context, sub *billing.Subscription) error {
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return err
	}
	s.events.Dispatch(ctx, sub)
	return nil
}

func (s *StripeWebhookService) observe(eventType, outcome string) {
	if s.observer != nil {
		s.observer.RecordWebhookEvent(eventType, outcome)
	}
}
