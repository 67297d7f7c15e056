package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeRevoker struct {
	revoked []string
	ttl     time.Duration
	err     error
}

func (r *fakeRevoker) AddUserTokensToBlacklist(_ context.Context, userID string, ttl time.Duration) error {
	r.revoked = append(r.revoked, userID)
	r.ttl = ttl
	return r.err
}

type adminFixture struct {
	profiles *testutil.MockProfileRepository
	subs     *testutil.MockSubscriptionRepository
	storage  *testutil.MockObjectStorage
	revoker  *fakeRevoker
	bus      *captureBus
	svc      *UserAdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		profiles: new(testutil.MockProfileRepository),
		subs:     new(testutil.MockSubscriptionRepository),
		storage:  new(testutil.MockObjectStorage),
		revoker:  &fakeRevoker{},
		bus:      &captureBus{},
	}
	uploader := media.NewUploader(f.storage, 5<<20, time.Minute, nil)
	f.svc = NewUserAdminService(f.profiles, f.subs, f.revoker, time.Hour, uploader, appevent.NewDispatcher(f.bus, nil), nil)
	return f
}

func adminProfile(t *testing.T) *identity.Profile {
	t.Helper()
	p := existingProfile(t, uuid.NewString()[:8]+"@example.com")
	require.NoError(t, p.PromoteToAdmin())
	p.ClearDomainEvents()
	return p
}

func TestUserAdmin_List(t *testing.T) {
	f := newAdminFixture()
	a := existingProfile(t, "a@example.com")
	b := existingProfile(t, "b@example.com")

	f.profiles.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 10 && filter.Search == "ex" &&
			filter.Filters["role"] == identity.RoleUser && filter.Filters["status"] == nil
	})).Return([]identity.Profile{*a, *b}, int64(12), nil)

	users, total, err := f.svc.List(context.Background(), UserListFilter{Search: "ex", Role: "user", Page: 2, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestUserAdmin_GetIncludesSubscription(t *testing.T) {
	f := newAdminFixture()
	p := existingProfile(t, "a@example.com")
	sub, err := billing.NewFreeSubscription(p.ID)
	require.NoError(t, err)

	f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.subs.On("FindByUserID", mock.Anything, p.ID).Return(sub, nil)

	resp, err := f.svc.Get(context.Background(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, string(billing.PlanFree), resp.Plan)
	assert.NotEmpty(t, resp.SubscriptionStatus)
}

func TestUserAdmin_SetRole(t *testing.T) {
	t.Run("promotes a user", func(t *testing.T) {
		f := newAdminFixture()
		actor := uuid.New()
		p := existingProfile(t, "a@example.com")
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("Save", mock.Anything, p).Return(nil)
		f.subs.On("FindByUserID", mock.Anything, p.ID).Return(nil, shared.ErrNotFound)

		resp, err := f.svc.SetRole(context.Background(), actor, p.ID, SetRoleRequest{Role: "admin"})

		require.NoError(t, err)
		assert.Equal(t, "admin", resp.Role)
		assert.Equal(t, []string{identity.EventTypeProfileRoleChanged}, f.bus.types())
		f.profiles.AssertNotCalled(t, "CountByRole", mock.Anything, mock.Anything)
	})

	t.Run("refuses self demotion", func(t *testing.T) {
		f := newAdminFixture()
		actor := uuid.New()

		_, err := f.svc.SetRole(context.Background(), actor, actor, SetRoleRequest{Role: "user"})

		assert.ErrorIs(t, err, ErrSelfAction)
		f.profiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("keeps the last admin", func(t *testing.T) {
		f := newAdminFixture()
		p := adminProfile(t)
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("CountByRole", mock.Anything, identity.RoleAdmin).Return(int64(1), nil)

		_, err := f.svc.SetRole(context.Background(), uuid.New(), p.ID, SetRoleRequest{Role: "user"})

		assert.ErrorIs(t, err, ErrLastAdmin)
		assert.True(t, p.IsAdmin())
		f.profiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("demotes when another admin remains", func(t *testing.T) {
		f := newAdminFixture()
		p := adminProfile(t)
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("CountByRole", mock.Anything, identity.RoleAdmin).Return(int64(2), nil)
		f.profiles.On("Save", mock.Anything, p).Return(nil)
		f.subs.On("FindByUserID", mock.Anything, p.ID).Return(nil, shared.ErrNotFound)

		resp, err := f.svc.SetRole(context.Background(), uuid.New(), p.ID, SetRoleRequest{Role: "user"})

		require.NoError(t, err)
		assert.Equal(t, "user", resp.Role)
	})
}

func TestUserAdmin_Suspend(t *testing.T) {
	t.Run("suspends and revokes tokens", func(t *testing.T) {
		f := newAdminFixture()
		p := existingProfile(t, "a@example.com")
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("Save", mock.Anything, p).Return(nil)
		f.subs.On("FindByUserID", mock.Anything, p.ID).Return(nil, shared.ErrNotFound)

		resp, err := f.svc.Suspend(context.Background(), uuid.New(), p.ID, SuspendRequest{Reason: "spam"})

		require.NoError(t, err)
		assert.Equal(t, "suspended", resp.Status)
		assert.Equal(t, "spam", resp.SuspendReason)
		assert.Equal(t, []string{p.ID.String()}, f.revoker.revoked)
		assert.Equal(t, time.Hour, f.revoker.ttl)
		assert.Equal(t, []string{identity.EventTypeProfileSuspended}, f.bus.types())
	})

	t.Run("revocation failure does not fail the suspension", func(t *testing.T) {
		f := newAdminFixture()
		f.revoker.err = errors.New("redis down")
		p := existingProfile(t, "a@example.com")
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("Save", mock.Anything, p).Return(nil)
		f.subs.On("FindByUserID", mock.Anything, p.ID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Suspend(context.Background(), uuid.New(), p.ID, SuspendRequest{})

		assert.NoError(t, err)
	})

	t.Run("refuses self suspension", func(t *testing.T) {
		f := newAdminFixture()
		actor := uuid.New()

		_, err := f.svc.Suspend(context.Background(), actor, actor, SuspendRequest{})

		assert.ErrorIs(t, err, ErrSelfAction)
	})

	t.Run("already suspended", func(t *testing.T) {
		f := newAdminFixture()
		p := existingProfile(t, "a@example.com")
		require.NoError(t, p.Suspend(""))
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		_, err := f.svc.Suspend(context.Background(), uuid.New(), p.ID, SuspendRequest{})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Empty(t, f.revoker.revoked)
	})
}

func TestUserAdmin_Reactivate(t *testing.T) {
	f := newAdminFixture()
	p := existingProfile(t, "a@example.com")
	require.NoError(t, p.Suspend("x"))
	p.ClearDomainEvents()
	f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.profiles.On("Save", mock.Anything, p).Return(nil)
	f.subs.On("FindByUserID", mock.Anything, p.ID).Return(nil, shared.ErrNotFound)

	resp, err := f.svc.Reactivate(context.Background(), uuid.New(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Empty(t, resp.SuspendReason)
	assert.Equal(t, []string{identity.EventTypeProfileReactivated}, f.bus.types())
}

func TestUserAdmin_Delete(t *testing.T) {
	t.Run("removes profile and avatar", func(t *testing.T) {
		f := newAdminFixture()
		p := existingProfile(t, "a@example.com")
		p.AvatarKey = "avatars/" + p.ID.String() + "/a.png"
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("Delete", mock.Anything, p.ID).Return(nil)
		f.storage.On("DeleteObject", mock.Anything, p.AvatarKey).Return(nil)

		err := f.svc.Delete(context.Background(), uuid.New(), p.ID)

		require.NoError(t, err)
		assert.Equal(t, []string{p.ID.String()}, f.revoker.revoked)
		f.profiles.AssertExpectations(t)
		f.storage.AssertExpectations(t)
	})

	t.Run("a failed delete leaves tokens and avatar alone", func(t *testing.T) {
		f := newAdminFixture()
		p := existingProfile(t, "a@example.com")
		p.AvatarKey = "avatars/" + p.ID.String() + "/a.png"
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("Delete", mock.Anything, p.ID).Return(errors.New("connection reset"))

		err := f.svc.Delete(context.Background(), uuid.New(), p.ID)

		require.Error(t, err)
		assert.Empty(t, f.revoker.revoked)
		f.storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("refuses self deletion", func(t *testing.T) {
		f := newAdminFixture()
		actor := uuid.New()

		assert.ErrorIs(t, f.svc.Delete(context.Background(), actor, actor), ErrSelfAction)
	})

	t.Run("keeps the last admin", func(t *testing.T) {
		f := newAdminFixture()
		p := adminProfile(t)
		f.profiles.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.profiles.On("CountByRole", mock.Anything, identity.RoleAdmin).Return(int64(1), nil)

		err := f.svc.Delete(context.Background(), uuid.New(), p.ID)

		assert.ErrorIs(t, err, ErrLastAdmin)
		f.profiles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newAdminFixture()
		id := uuid.New()
		f.profiles.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, f.svc.Delete(context.Background(), uuid.New(), id), shared.ErrNotFound)
	})
}
