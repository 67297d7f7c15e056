package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaidSubscription(t *testing.T) *Subscription {
	t.Helper()
	s, err := NewFreeSubscription(uuid.New())
	require.NoError(t, err)
	end := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, s.SyncFromProvider(ProviderState{
		SubscriptionID: "sub_123",
		CustomerID:     "cus_123",
		Plan:           PlanPro,
		Status:         SubscriptionStatusActive,
		PeriodEnd:      &end,
	}))
	s.ClearDomainEvents()
	return s
}

func TestNewFreeSubscription(t *testing.T) {
	s, err := NewFreeSubscription(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, PlanFree, s.Plan)
	assert.Equal(t, SubscriptionStatusActive, s.Status)
	assert.Equal(t, PlanFree, s.EffectivePlan(time.Now()))

	_, err = NewFreeSubscription(uuid.Nil)
	assert.Error(t, err)
}

func TestSubscription_SyncFromProvider(t *testing.T) {
	s := newPaidSubscription(t)
	assert.Equal(t, PlanPro, s.Plan)
	assert.Equal(t, "sub_123", s.StripeSubscriptionID)
	assert.Equal(t, "cus_123", s.StripeCustomerID)

	t.Run("canceled falls back to free", func(t *testing.T) {
		s := newPaidSubscription(t)
		require.NoError(t, s.SyncFromProvider(ProviderState{Plan: PlanPro, Status: SubscriptionStatusCanceled}))
		assert.Equal(t, PlanFree, s.Plan)
		assert.Empty(t, s.StripeSubscriptionID)
		assert.Equal(t, "cus_123", s.StripeCustomerID)
		require.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("rejects unknown plan and status", func(t *testing.T) {
		s := newPaidSubscription(t)
		assert.Error(t, s.SyncFromProvider(ProviderState{Plan: "gold", Status: SubscriptionStatusActive}))
		assert.Error(t, s.SyncFromProvider(ProviderState{Plan: PlanPro, Status: "paused"}))
	})

	t.Run("no event when nothing changes", func(t *testing.T) {
		s := newPaidSubscription(t)
		require.NoError(t, s.SyncFromProvider(ProviderState{Plan: PlanPro, Status: SubscriptionStatusActive}))
		assert.Empty(t, s.GetDomainEvents())
	})
}

func TestSubscription_CancelResume(t *testing.T) {
	s := newPaidSubscription(t)
	require.NoError(t, s.ScheduleCancel())
	assert.True(t, s.CancelAtPeriodEnd)
	assert.Error(t, s.ScheduleCancel())

	require.NoError(t, s.Resume())
	assert.False(t, s.CancelAtPeriodEnd)
	assert.Error(t, s.Resume())

	free, _ := NewFreeSubscription(uuid.New())
	var domainErr *shared.DomainError
	require.ErrorAs(t, free.ScheduleCancel(), &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestSubscription_EffectivePlan(t *testing.T) {
	now := time.Now()
	s := newPaidSubscription(t)

	s.MarkPastDue()
	assert.Equal(t, SubscriptionStatusPastDue, s.Status)
	assert.Equal(t, PlanPro, s.EffectivePlan(now), "grace until period end")
	assert.Equal(t, PlanFree, s.EffectivePlan(now.Add(60*24*time.Hour)))

	s.MarkPaid(nil)
	assert.Equal(t, SubscriptionStatusActive, s.Status)

	s.MarkCanceled(now)
	assert.Equal(t, PlanFree, s.EffectivePlan(now))
	assert.NotNil(t, s.CanceledAt)

	require.NoError(t, s.AdminOverride(PlanBusiness, SubscriptionStatusTrialing))
	assert.Equal(t, PlanBusiness, s.EffectivePlan(now))
	assert.Error(t, s.AdminOverride("gold", SubscriptionStatusActive))

	require.NoError(t, s.AdminOverride(PlanBusiness, SubscriptionStatusIncomplete))
	assert.Equal(t, PlanFree, s.EffectivePlan(now))
}

func TestSubscription_AttachCustomer(t *testing.T) {
	s, _ := NewFreeSubscription(uuid.New())
	assert.Error(t, s.AttachCustomer(""))
	require.NoError(t, s.AttachCustomer("cus_1"))
	assert.Equal(t, 2, s.Version)
	require.NoError(t, s.AttachCustomer("cus_1"))
	assert.Equal(t, 2, s.Version)
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Len(t, c.Plans(), 3)

	pro, ok := c.Get(PlanPro)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("19").Equal(pro.MonthlyPrice))
	assert.Equal(t, 40, pro.Limits.BookingsPerMonth)

	assert.Equal(t, 0, c.LimitsFor(PlanBusiness).BookingsPerMonth)
	assert.Equal(t, c.LimitsFor(PlanFree), c.LimitsFor("unknown"))

	price := decimal.RequireFromString("25")
	c.Override(PlanPro, &price, &Limits{BookingsPerMonth: 50})
	pro, _ = c.Get(PlanPro)
	assert.True(t, price.Equal(pro.MonthlyPrice))
	assert.Equal(t, 50, pro.Limits.BookingsPerMonth)

	assert.True(t, PlanPro.IsPaid())
	assert.False(t, PlanFree.IsPaid())
}
