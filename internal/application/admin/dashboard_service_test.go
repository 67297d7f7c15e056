package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	rooms    *testutil.MockRoomRepository
	profiles *testutil.MockProfileRepository
	bookings *testutil.MockBookingRepository
	subs     *testutil.MockSubscriptionRepository
	svc      *DashboardService
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	f := &dashboardFixture{
		rooms:    new(testutil.MockRoomRepository),
		profiles: new(testutil.MockProfileRepository),
		bookings: new(testutil.MockBookingRepository),
		subs:     new(testutil.MockSubscriptionRepository),
	}
	f.svc = NewDashboardService(f.rooms, f.profiles, f.bookings, f.subs, loc, nil)
	// 23:30 UTC on June 1st is already June 2nd in Berlin
	f.svc.now = func() time.Time { return time.Date(2026, 6, 1, 23, 30, 0, 0, time.UTC) }
	return f
}

func TestOverview(t *testing.T) {
	f := newDashboardFixture(t)
	loc := f.svc.location
	dayStart := time.Date(2026, 6, 2, 0, 0, 0, 0, loc)

	f.rooms.On("CountByStatus", mock.Anything).Return(map[room.Status]int64{
		room.StatusActive:      4,
		room.StatusMaintenance: 1,
	}, nil)
	f.profiles.On("Count", mock.Anything).Return(int64(12), nil)
	f.profiles.On("CountByRole", mock.Anything, identity.RoleAdmin).Return(int64(2), nil)
	f.bookings.On("CountStartingBetween", mock.Anything, dayStart, dayStart.AddDate(0, 0, 1)).Return(int64(3), nil)
	f.bookings.On("CountStartingBetween", mock.Anything, dayStart.AddDate(0, 0, 1), dayStart.AddDate(0, 0, 8)).Return(int64(9), nil)
	f.bookings.On("CountByStatus", mock.Anything).Return(map[booking.Status]int64{
		booking.StatusConfirmed: 20,
		booking.StatusCancelled: 4,
	}, nil)
	f.subs.On("CountByPlan", mock.Anything).Return(map[billing.PlanID]int64{
		billing.PlanFree: 9,
		billing.PlanPro:  3,
	}, nil)
	f.subs.On("CountByStatus", mock.Anything).Return(map[billing.SubscriptionStatus]int64{
		billing.SubscriptionStatusActive:  11,
		billing.SubscriptionStatusPastDue: 1,
	}, nil)

	out, err := f.svc.Overview(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Rooms.Total)
	assert.Equal(t, int64(1), out.Rooms.ByStatus["maintenance"])
	assert.Equal(t, UserStats{Total: 12, Admins: 2}, out.Users)
	assert.Equal(t, int64(3), out.Bookings.Today)
	assert.Equal(t, int64(9), out.Bookings.NextSevenDays)
	assert.Equal(t, int64(20), out.Bookings.ByStatus["confirmed"])
	assert.Equal(t, map[string]int64{"free": 9, "pro": 3}, out.Subscriptions.ByPlan)
	assert.Equal(t, int64(1), out.Subscriptions.ByStatus["past_due"])
	f.bookings.AssertExpectations(t)
}

func TestOverview_QueryFailure(t *testing.T) {
	f := newDashboardFixture(t)

	f.rooms.On("CountByStatus", mock.Anything).Return(map[room.Status]int64(nil), errors.New("db down"))
	f.profiles.On("Count", mock.Anything).Return(int64(0), nil).Maybe()
	f.profiles.On("CountByRole", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	f.bookings.On("CountStartingBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	f.bookings.On("CountByStatus", mock.Anything).Return(map[booking.Status]int64{}, nil).Maybe()
	f.subs.On("CountByPlan", mock.Anything).Return(map[billing.PlanID]int64{}, nil).Maybe()
	f.subs.On("CountByStatus", mock.Anything).Return(map[billing.SubscriptionStatus]int64{}, nil).Maybe()

	out, err := f.svc.Overview(context.Background())

	assert.Nil(t, out)
	assert.EqualError(t, err, "db down")
}
