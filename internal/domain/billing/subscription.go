package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// SubscriptionStatus mirrors the lifecycle states of the payment provider
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
)

// IsValid reports whether the status is known
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue,
		SubscriptionStatusCanceled, SubscriptionStatusIncomplete:
		return true
	}
	return false
}

// Subscription links one profile to a plan
type Subscription struct {
	shared.BaseAggregateRoot
	UserID               uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	Plan                 PlanID             `gorm:"type:varchar(20);not null;default:'free';index"`
	Status               SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	StripeCustomerID     string             `gorm:"type:varchar(100);index"`
	StripeSubscriptionID string             `gorm:"type:varchar(100);index"`
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool `gorm:"not null;default:false"`
	CanceledAt           *time.Time
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// NewFreeSubscription creates the subscription every new profile starts with
func NewFreeSubscription(userID uuid.UUID) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	s := &Subscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Plan:              PlanFree,
		Status:            SubscriptionStatusActive,
	}
	return s, nil
}

// AttachCustomer stores the payment provider customer ID
func (s *Subscription) AttachCustomer(customerID string) error {
	if customerID == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if s.StripeCustomerID == customerID {
		return nil
	}
	s.StripeCustomerID = customerID
	s.IncrementVersion()
	return nil
}

// ProviderState is the subscription state reported by the payment provider
type ProviderState struct {
	SubscriptionID    string
	CustomerID        string
	Plan              PlanID
	Status            SubscriptionStatus
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	CancelAtPeriodEnd bool
	CanceledAt        *time.Time
}

// SyncFromProvider overwrites local state with what the provider reports
func (s *Subscription) SyncFromProvider(st ProviderState) error {
	if !st.Plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Unknown plan: "+string(st.Plan))
	}
	if !st.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown subscription status: "+string(st.Status))
	}

	oldPlan, oldStatus := s.Plan, s.Status
	if st.SubscriptionID != "" {
		s.StripeSubscriptionID = st.SubscriptionID
	}
	if st.CustomerID != "" {
		s.StripeCustomerID = st.CustomerID
	}
	s.Plan = st.Plan
	s.Status = st.Status
	s.CurrentPeriodStart = st.PeriodStart
	s.CurrentPeriodEnd = st.PeriodEnd
	s.CancelAtPeriodEnd = st.CancelAtPeriodEnd
	s.CanceledAt = st.CanceledAt
	if st.Status == SubscriptionStatusCanceled {
		s.fallBackToFree()
	}
	s.IncrementVersion()

	if oldPlan != s.Plan || oldStatus != s.Status {
		s.AddDomainEvent(NewSubscriptionChangedEvent(s, oldPlan, oldStatus))
	}
	return nil
}

// ScheduleCancel flags a paid subscription to end with its current period
func (s *Subscription) ScheduleCancel() error {
	if !s.Plan.IsPaid() || s.StripeSubscriptionID == "" {
		return shared.NewDomainError("INVALID_STATE", "Only paid subscriptions can be cancelled")
	}
	if s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Subscription is already cancelled")
	}
	if s.CancelAtPeriodEnd {
		return shared.NewDomainError("INVALID_STATE", "Subscription is already scheduled to cancel")
	}
	s.CancelAtPeriodEnd = true
	s.IncrementVersion()
	return nil
}

// Resume clears a scheduled cancellation
func (s *Subscription) Resume() error {
	if !s.CancelAtPeriodEnd || s.Status == SubscriptionStatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Subscription is not scheduled to cancel")
	}
	s.CancelAtPeriodEnd = false
	s.IncrementVersion()
	return nil
}

// MarkCanceled ends the paid subscription and returns the user to the free plan
func (s *Subscription) MarkCanceled(now time.Time) {
	oldPlan, oldStatus := s.Plan, s.Status
	now = now.UTC()
	s.Status = SubscriptionStatusCanceled
	s.CanceledAt = &now
	s.fallBackToFree()
	s.IncrementVersion()
	s.AddDomainEvent(NewSubscriptionChangedEvent(s, oldPlan, oldStatus))
}

// MarkPastDue records a failed renewal payment
func (s *Subscription) MarkPastDue() {
	if s.Status == SubscriptionStatusPastDue {
		return
	}
	oldStatus := s.Status
	s.Status = SubscriptionStatusPastDue
	s.IncrementVersion()
	s.AddDomainEvent(NewSubscriptionChangedEvent(s, s.Plan, oldStatus))
}

// MarkPaid records a successful renewal payment
func (s *Subscription) MarkPaid(periodEnd *time.Time) {
	oldStatus := s.Status
	if s.Status == SubscriptionStatusPastDue || s.Status == SubscriptionStatusIncomplete {
		s.Status = SubscriptionStatusActive
	}
	if periodEnd != nil {
		s.CurrentPeriodEnd = periodEnd
	}
	s.IncrementVersion()
	if oldStatus != s.Status {
		s.AddDomainEvent(NewSubscriptionChangedEvent(s, s.Plan, oldStatus))
	}
}

// AdminOverride sets plan and status directly, e.g. for complimentary access
func (s *Subscription) AdminOverride(plan PlanID, status SubscriptionStatus) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Unknown plan: "+string(plan))
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown subscription status: "+string(status))
	}
	oldPlan, oldStatus := s.Plan, s.Status
	s.Plan = plan
	s.Status = status
	s.IncrementVersion()
	s.AddDomainEvent(NewSubscriptionChangedEvent(s, oldPlan, oldStatus))
	return nil
}

// EffectivePlan is the plan whose limits apply at now. A past-due subscription
// keeps its plan until the end of the paid period.
func (s *Subscription) EffectivePlan(now time.Time) PlanID {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return s.Plan
	case SubscriptionStatusPastDue:
		if s.CurrentPeriodEnd != nil && now.Before(*s.CurrentPeriodEnd) {
			return s.Plan
		}
	}
	return PlanFree
}

func (s *Subscription) fallBackToFree() {
	s.Plan = PlanFree
	s.StripeSubscriptionID = ""
	s.CancelAtPeriodEnd = false
	s.CurrentPeriodStart = nil
	s.CurrentPeriodEnd = nil
}
