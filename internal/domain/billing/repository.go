package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// Filter keys understood by SubscriptionRepository.FindAll
const (
	FilterPlan   = "plan"   // PlanID
	FilterStatus = "status" // SubscriptionStatus
)

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*Subscription, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Subscription, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Subscription, int64, error)

	Save(ctx context.Context, subscription *Subscription) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountByPlan(ctx context.Context) (map[PlanID]int64, error)
	CountByStatus(ctx context.Context) (map[SubscriptionStatus]int64, error)
}
