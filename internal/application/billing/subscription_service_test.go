package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/config"
	"github.com/roombook/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCustomer(ctx context.Context, input CustomerInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *mockGateway) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	args := m.Called(ctx, customerID)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*billing.ProviderState, error) {
	args := m.Called(ctx, subscriptionID, cancel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ProviderState), args.Error(1)
}

func (m *mockGateway) GetSubscription(ctx context.Context, subscriptionID string) (*billing.ProviderState, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ProviderState), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookEvent), args.Error(1)
}

type captureBus struct {
	events []shared.DomainEvent
}

func (b *captureBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.events = append(b.events, events...)
	return nil
}

var testNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

type subscriptionFixture struct {
	subs     *testutil.MockSubscriptionRepository
	profiles *testutil.MockProfileRepository
	gateway  *mockGateway
	bus      *captureBus
	svc      *SubscriptionService
}

func newSubscriptionFixture(withGateway bool) *subscriptionFixture {
	f := &subscriptionFixture{
		subs:     new(testutil.MockSubscriptionRepository),
		profiles: new(testutil.MockProfileRepository),
		gateway:  new(mockGateway),
		bus:      &captureBus{},
	}
	var gw PaymentGateway
	if withGateway {
		gw = f.gateway
	}
	f.svc = NewSubscriptionService(f.subs, f.profiles, gw, billing.DefaultCatalog(), appevent.NewDispatcher(f.bus, nil), nil)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func freeSubscription(t *testing.T, userID uuid.UUID) *billing.Subscription {
	t.Helper()
	s, err := billing.NewFreeSubscription(userID)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func proSubscription(t *testing.T, userID uuid.UUID) *billing.Subscription {
	t.Helper()
	s := freeSubscription(t, userID)
	end := testNow.AddDate(0, 0, 20)
	require.NoError(t, s.SyncFromProvider(billing.ProviderState{
		SubscriptionID: "sub_123",
		CustomerID:     "cus_123",
		Plan:           billing.PlanPro,
		Status:         billing.SubscriptionStatusActive,
		PeriodEnd:      &end,
	}))
	s.ClearDomainEvents()
	return s
}

func TestListPlans(t *testing.T) {
	f := newSubscriptionFixture(true)

	plans := f.svc.ListPlans()

	require.Len(t, plans, 3)
	assert.Equal(t, "free", plans[0].ID)
	assert.False(t, plans[0].Paid)
	assert.Equal(t, 5, plans[0].Limits.BookingsPerMonth)
	assert.Equal(t, 2, plans[0].Limits.MaxBookingHours)
	assert.Equal(t, 14, plans[0].Limits.HorizonDays)
	assert.True(t, plans[1].Paid)
	assert.True(t, decimal.RequireFromString("19").Equal(plans[1].MonthlyPrice))
	assert.Equal(t, 0, plans[2].Limits.BookingsPerMonth)
}

func TestGetMine_CreatesFreeWhenMissing(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()

	f.subs.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	f.subs.On("Save", mock.Anything, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.UserID == userID && s.Plan == billing.PlanFree
	})).Return(nil)

	resp, err := f.svc.GetMine(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "free", resp.Plan)
	assert.Equal(t, "free", resp.EffectivePlan)
	assert.False(t, resp.HasBillingAccount)
	assert.Equal(t, 5, resp.Limits.BookingsPerMonth)
}

func TestGetMine_PastDueAfterPeriodUsesFreeLimits(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()
	sub := proSubscription(t, userID)
	sub.MarkPastDue()
	past := testNow.Add(-time.Hour)
	sub.CurrentPeriodEnd = &past

	f.subs.On("FindByUserID", mock.Anything, userID).Return(sub, nil)

	resp, err := f.svc.GetMine(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "pro", resp.Plan)
	assert.Equal(t, "free", resp.EffectivePlan)
	assert.Equal(t, "past_due", resp.Status)
	assert.Equal(t, 5, resp.Limits.BookingsPerMonth)
}

func TestCreateCheckoutSession_CreatesCustomerOnFirstUse(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()
	sub := freeSubscription(t, userID)
	profile := &identity.Profile{Email: "ada@example.com", FullName: "Ada Lovelace"}
	profile.ID = userID

	f.subs.On("FindByUserID", mock.Anything, userID).Return(sub, nil)
	f.profiles.On("FindByID", mock.Anything, userID).Return(profile, nil)
	f.gateway.On("CreateCustomer", mock.Anything, CustomerInput{UserID: userID, Email: "ada@example.com", Name: "Ada Lovelace"}).
		Return("cus_new", nil)
	f.subs.On("Save", mock.Anything, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.StripeCustomerID == "cus_new"
	})).Return(nil).Once()
	f.gateway.On("CreateCheckoutSession", mock.Anything, CheckoutInput{CustomerID: "cus_new", UserID: userID, Plan: billing.PlanPro}).
		Return(&CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil)

	resp, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "pro"})

	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.SessionID)
	assert.Equal(t, "https://checkout.example/cs_1", resp.URL)
	f.gateway.AssertExpectations(t)
	f.subs.AssertExpectations(t)
}

func TestCreateCheckoutSession_ReusesCustomer(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()
	sub := freeSubscription(t, userID)
	require.NoError(t, sub.AttachCustomer("cus_old"))

	f.subs.On("FindByUserID", mock.Anything, userID).Return(sub, nil)
	f.gateway.On("CreateCheckoutSession", mock.Anything, CheckoutInput{CustomerID: "cus_old", UserID: userID, Plan: billing.PlanBusiness}).
		Return(&CheckoutSession{ID: "cs_2", URL: "u"}, nil)

	_, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "business"})

	require.NoError(t, err)
	f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	f.subs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateCheckoutSession_Rejections(t *testing.T) {
	userID := uuid.New()

	t.Run("billing disabled", func(t *testing.T) {
		f := newSubscriptionFixture(false)
		_, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "pro"})
		assert.ErrorIs(t, err, ErrBillingDisabled)
	})

	t.Run("free plan", func(t *testing.T) {
		f := newSubscriptionFixture(true)
		_, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "free"})
		assert.ErrorIs(t, err, ErrPlanNotPurchasable)
	})

	t.Run("already on plan", func(t *testing.T) {
		f := newSubscriptionFixture(true)
		f.subs.On("FindByUserID", mock.Anything, userID).Return(proSubscription(t, userID), nil)
		_, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "pro"})
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})

	t.Run("switching paid plans goes through the portal", func(t *testing.T) {
		f := newSubscriptionFixture(true)
		f.subs.On("FindByUserID", mock.Anything, userID).Return(proSubscription(t, userID), nil)
		_, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "business"})
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
		f.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("provider failure", func(t *testing.T) {
		f := newSubscriptionFixture(true)
		sub := freeSubscription(t, userID)
		require.NoError(t, sub.AttachCustomer("cus_1"))
		f.subs.On("FindByUserID", mock.Anything, userID).Return(sub, nil)
		f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe down"))
		_, err := f.svc.CreateCheckoutSession(context.Background(), userID, CheckoutRequest{Plan: "pro"})
		assert.EqualError(t, err, "stripe down")
	})
}

func TestCreatePortalSession(t *testing.T) {
	userID := uuid.New()

	t.Run("no customer yet", func(t *testing.T) {
		f := newSubscriptionFixture(true)
		f.subs.On("FindByUserID", mock.Anything, userID).Return(freeSubscription(t, userID), nil)
		_, err := f.svc.CreatePortalSession(context.Background(), userID)
		assert.ErrorIs(t, err, ErrNoCustomer)
	})

	t.Run("opens portal", func(t *testing.T) {
		f := newSubscriptionFixture(true)
		f.subs.On("FindByUserID", mock.Anything, userID).Return(proSubscription(t, userID), nil)
		f.gateway.On("CreatePortalSession", mock.Anything, "cus_123").Return("https://portal.example", nil)
		resp, err := f.svc.CreatePortalSession(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "https://portal.example", resp.URL)
	})
}

func TestCancelAtPeriodEnd(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()
	sub := proSubscription(t, userID)
	end := testNow.AddDate(0, 0, 20)

	f.subs.On("FindByUserID", mock.Anything, userID).Return(sub, nil)
	f.gateway.On("SetCancelAtPeriodEnd", mock.Anything, "sub_123", true).Return(&billing.ProviderState{
		SubscriptionID:    "sub_123",
		CustomerID:        "cus_123",
		Plan:              billing.PlanPro,
		Status:            billing.SubscriptionStatusActive,
		PeriodEnd:         &end,
		CancelAtPeriodEnd: true,
	}, nil)
	f.subs.On("Save", mock.Anything, sub).Return(nil)

	resp, err := f.svc.CancelAtPeriodEnd(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, resp.CancelAtPeriodEnd)
	assert.Equal(t, "pro", resp.EffectivePlan)
}

func TestCancelAtPeriodEnd_FreePlanRefused(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()
	f.subs.On("FindByUserID", mock.Anything, userID).Return(freeSubscription(t, userID), nil)

	_, err := f.svc.CancelAtPeriodEnd(context.Background(), userID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	f.gateway.AssertNotCalled(t, "SetCancelAtPeriodEnd", mock.Anything, mock.Anything, mock.Anything)
}

func TestResume(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()
	sub := proSubscription(t, userID)
	require.NoError(t, sub.ScheduleCancel())

	f.subs.On("FindByUserID", mock.Anything, userID).Return(sub, nil)
	f.gateway.On("SetCancelAtPeriodEnd", mock.Anything, "sub_123", false).Return(&billing.ProviderState{
		SubscriptionID: "sub_123",
		Plan:           billing.PlanPro,
		Status:         billing.SubscriptionStatusActive,
	}, nil)
	f.subs.On("Save", mock.Anything, sub).Return(nil)

	resp, err := f.svc.Resume(context.Background(), userID)

	require.NoError(t, err)
	assert.False(t, resp.CancelAtPeriodEnd)
}

func TestAdminList_MapsFilter(t *testing.T) {
	f := newSubscriptionFixture(true)
	userID := uuid.New()

	f.subs.On("FindAll", mock.Anything, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Page == 2 && fl.PageSize == 10 &&
			fl.Filters[billing.FilterPlan] == billing.PlanPro &&
			fl.Filters[billing.FilterStatus] == billing.SubscriptionStatusActive
	})).Return([]billing.Subscription{*proSubscription(t, userID)}, int64(11), nil)

	items, total, err := f.svc.List(context.Background(), SubscriptionListFilter{Plan: "pro", Status: "active", Page: 2, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, items, 1)
	assert.Equal(t, "sub_123", items[0].StripeSubscriptionID)
	assert.Equal(t, "cus_123", items[0].StripeCustomerID)
}

func TestAdminOverride(t *testing.T) {
	f := newSubscriptionFixture(false)
	userID := uuid.New()
	sub := freeSubscription(t, userID)

	f.subs.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	f.subs.On("Save", mock.Anything, sub).Return(nil)

	resp, err := f.svc.Override(context.Background(), uuid.New(), sub.ID, OverrideRequest{Plan: "business", Status: "active"})

	require.NoError(t, err)
	assert.Equal(t, "business", resp.EffectivePlan)
	require.Len(t, f.bus.events, 1)
	assert.Equal(t, billing.EventTypeSubscriptionChanged, f.bus.events[0].EventType())
}

func TestBuildCatalog(t *testing.T) {
	price := "25.50"
	bookings := 60
	hours := 6
	days := 90

	catalog, err := BuildCatalog(map[string]config.PlanOverride{
		"pro": {MonthlyPrice: &price, BookingsPerMonth: &bookings, MaxBookingHours: &hours, HorizonDays: &days},
	})

	require.NoError(t, err)
	pro, ok := catalog.Get(billing.PlanPro)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("25.50").Equal(pro.MonthlyPrice))
	assert.Equal(t, 60, pro.Limits.BookingsPerMonth)
	assert.Equal(t, 6*time.Hour, pro.Limits.MaxBookingLength)
	assert.Equal(t, 90*24*time.Hour, pro.Limits.BookingHorizon)

	free, _ := catalog.Get(billing.PlanFree)
	assert.Equal(t, 5, free.Limits.BookingsPerMonth)
}

func TestBuildCatalog_Invalid(t *testing.T) {
	bad := "abc"
	negative := "-1"

	_, err := BuildCatalog(map[string]config.PlanOverride{"enterprise": {}})
	assert.Error(t, err)

	_, err = BuildCatalog(map[string]config.PlanOverride{"pro": {MonthlyPrice: &bad}})
	assert.Error(t, err)

	_, err = BuildCatalog(map[string]config.PlanOverride{"pro": {MonthlyPrice: &negative}})
	assert.Error(t, err)
}
