package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements billing.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) findOne(ctx context.Context, cond string, arg any) (*billing.Subscription, error) {
	var sub billing.Subscription
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUserID finds the subscription of a user
func (r *GormSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

// FindByStripeSubscriptionID finds a subscription by its Stripe subscription ID
func (r *GormSubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	if subscriptionID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "stripe_subscription_id = ?", subscriptionID)
}

// FindByStripeCustomerID finds a subscription by its Stripe customer ID
func (r *GormSubscriptionRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*billing.Subscription, error) {
	if customerID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "stripe_customer_id = ?", customerID)
}

// FindAll returns one page of subscriptions and the total matching the filter
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Subscription, int64, error) {
	base := r.db.WithContext(ctx).Model(&billing.Subscription{})
	for key, value := range filter.Filters {
		switch key {
		case billing.FilterPlan:
			base = base.Where("plan = ?", value)
		case billing.FilterStatus:
			base = base.Where("status = ?", value)
		}
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []billing.Subscription
	if err := paginate(base.Order(orderClause(filter.OrderBy, filter.OrderDir, SubscriptionSortFields, "created_at")), filter).
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete deletes a subscription
func (r *GormSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.Subscription{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByPlan groups subscriptions by plan
func (r *GormSubscriptionRepository) CountByPlan(ctx context.Context) (map[billing.PlanID]int64, error) {
	var rows []struct {
		Plan  string
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.Subscription{}).
		Select("plan, COUNT(*) AS count").
		Group("plan").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[billing.PlanID]int64, len(rows))
	for _, row := range rows {
		out[billing.PlanID(row.Plan)] = row.Count
	}
	return out, nil
}

// CountByStatus groups subscriptions by status
func (r *GormSubscriptionRepository) CountByStatus(ctx context.Context) (map[billing.SubscriptionStatus]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&billing.Subscription{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[billing.SubscriptionStatus]int64, len(rows))
	for _, row := range rows {
		out[billing.SubscriptionStatus(row.Status)] = row.Count
	}
	return out, nil
}

// Ensure GormSubscriptionRepository implements SubscriptionRepository
var _ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
