package billing

import (
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// AggregateTypeSubscription is the aggregate type name for subscriptions
const AggregateTypeSubscription = "Subscription"

// EventTypeSubscriptionChanged is published when plan or status changes
const EventTypeSubscriptionChanged = "SubscriptionChanged"

// SubscriptionChangedEvent carries the before and after plan/status pair
type SubscriptionChangedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID          `json:"subscription_id"`
	UserID         uuid.UUID          `json:"user_id"`
	OldPlan        PlanID             `json:"old_plan"`
	NewPlan        PlanID             `json:"new_plan"`
	OldStatus      SubscriptionStatus `json:"old_status"`
	NewStatus      SubscriptionStatus `json:"new_status"`
}

// NewSubscriptionChangedEvent creates a new SubscriptionChangedEvent
func NewSubscriptionChangedEvent(s *Subscription, oldPlan PlanID, oldStatus SubscriptionStatus) *SubscriptionChangedEvent {
	return &SubscriptionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionChanged, AggregateTypeSubscription, s.ID),
		SubscriptionID:  s.ID,
		UserID:          s.UserID,
		OldPlan:         oldPlan,
		NewPlan:         s.Plan,
		OldStatus:       oldStatus,
		NewStatus:       s.Status,
	}
}
