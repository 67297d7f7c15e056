package room

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAmenityService() (*AmenityService, *testutil.MockAmenityRepository, *memoryCache) {
	repo := new(testutil.MockAmenityRepository)
	cache := newMemoryCache()
	return NewAmenityService(repo, cache, nil), repo, cache
}

func TestAmenityService_Create(t *testing.T) {
	svc, repo, _ := newAmenityService()
	repo.On("ExistsByName", mock.Anything, "Projector", (*uuid.UUID)(nil)).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*room.Amenity")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateAmenityRequest{Name: "Projector", Icon: "projector"})

	require.NoError(t, err)
	assert.Equal(t, "Projector", resp.Name)
	assert.Equal(t, "projector", resp.Icon)
	repo.AssertExpectations(t)
}

func TestAmenityService_Create_DuplicateName(t *testing.T) {
	svc, repo, _ := newAmenityService()
	repo.On("ExistsByName", mock.Anything, "projector", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := svc.Create(context.Background(), CreateAmenityRequest{Name: "projector"})

	assert.ErrorIs(t, err, ErrAmenityNameTaken)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAmenityService_Update(t *testing.T) {
	svc, repo, cache := newAmenityService()
	a, err := room.NewAmenity("Screen", "", "")
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	repo.On("ExistsByName", mock.Anything, "TV Screen", &a.ID).Return(false, nil)
	repo.On("Save", mock.Anything, a).Return(nil)

	resp, err := svc.Update(context.Background(), a.ID, UpdateAmenityRequest{Name: "TV Screen", Description: "65 inch"})

	require.NoError(t, err)
	assert.Equal(t, "TV Screen", resp.Name)
	assert.Equal(t, "65 inch", resp.Description)
	assert.Equal(t, 1, cache.invalidated)
}

func TestAmenityService_Update_NameTakenByAnother(t *testing.T) {
	svc, repo, _ := newAmenityService()
	a, err := room.NewAmenity("Screen", "", "")
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	repo.On("ExistsByName", mock.Anything, "Whiteboard", &a.ID).Return(true, nil)

	_, err = svc.Update(context.Background(), a.ID, UpdateAmenityRequest{Name: "Whiteboard"})

	assert.ErrorIs(t, err, ErrAmenityNameTaken)
	assert.Equal(t, "Screen", a.Name)
}

func TestAmenityService_List(t *testing.T) {
	svc, repo, _ := newAmenityService()
	a, _ := room.NewAmenity("Phone", "", "")
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "name" && f.OrderDir == "asc" && f.PageSize == 100 && f.Search == "ph"
	})).Return([]room.Amenity{*a}, int64(1), nil)

	items, total, err := svc.List(context.Background(), AmenityListFilter{Search: "ph"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Phone", items[0].Name)
}

func TestAmenityService_Delete(t *testing.T) {
	svc, repo, cache := newAmenityService()
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(&room.Amenity{}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, 1, cache.invalidated)

	missing := uuid.New()
	repo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), missing), shared.ErrNotFound)
}
