package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryCache mimics the generation-based Redis cache in memory
type memoryCache struct {
	entries     map[string][]byte
	generation  int64
	invalidated int
	failGet     bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) key(gen int64, key string) string {
	return fmt.Sprintf("%d:%s", gen, key)
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, int64, error) {
	if c.failGet {
		return false, 0, errors.New("redis down")
	}
	data, ok := c.entries[c.key(c.generation, key)]
	if !ok {
		return false, c.generation, nil
	}
	return true, c.generation, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, gen int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[c.key(gen, key)] = data
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.invalidated++
	c.generation++
	return nil
}

// live counts the entries readable under the current generation
func (c *memoryCache) live() int {
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, c.key(c.generation, "")) {
			n++
		}
	}
	return n
}

type roomFixture struct {
	rooms     *testutil.MockRoomRepository
	amenities *testutil.MockAmenityRepository
	bookings  *testutil.MockBookingRepository
	storage   *testutil.MockObjectStorage
	cache     *memoryCache
	svc       *RoomService
	now       time.Time
}

func newRoomFixture() *roomFixture {
	f := &roomFixture{
		rooms:     new(testutil.MockRoomRepository),
		amenities: new(testutil.MockAmenityRepository),
		bookings:  new(testutil.MockBookingRepository),
		storage:   new(testutil.MockObjectStorage),
		cache:     newMemoryCache(),
		now:       time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	uploader := media.NewUploader(f.storage, 5<<20, time.Minute, nil)
	f.svc = NewRoomService(f.rooms, f.amenities, f.bookings, uploader, f.cache, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func newTestRoom(t *testing.T, name string) *room.Room {
	t.Helper()
	r, err := room.NewRoom(room.Details{Name: name, Capacity: 8, HourlyRate: decimal.NewFromInt(30)})
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func newTestAmenity(t *testing.T, name string) *room.Amenity {
	t.Helper()
	a, err := room.NewAmenity(name, "", "")
	require.NoError(t, err)
	return a
}

func TestRoomService_Create(t *testing.T) {
	f := newRoomFixture()
	projector := newTestAmenity(t, "Projector")

	f.rooms.On("ExistsBySlug", mock.Anything, "salle-etoile").Return(false, nil)
	f.amenities.On("FindByIDs", mock.Anything, []uuid.UUID{projector.ID, projector.ID}).Return([]room.Amenity{*projector}, nil)
	f.rooms.On("Save", mock.Anything, mock.MatchedBy(func(r *room.Room) bool {
		return r.Slug == "salle-etoile" && len(r.AmenityIDs) == 1
	})).Return(nil)
	f.amenities.On("FindByIDs", mock.Anything, []uuid.UUID{projector.ID}).Return([]room.Amenity{*projector}, nil)

	resp, err := f.svc.Create(context.Background(), CreateRoomRequest{
		Name:       "Salle Étoile",
		Capacity:   12,
		HourlyRate: decimal.RequireFromString("25.50"),
		AmenityIDs: []uuid.UUID{projector.ID, projector.ID},
	})

	require.NoError(t, err)
	assert.Equal(t, "salle-etoile", resp.Slug)
	assert.Equal(t, "active", resp.Status)
	require.Len(t, resp.Amenities, 1)
	assert.Equal(t, "Projector", resp.Amenities[0].Name)
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestRoomService_Create_SlugTaken(t *testing.T) {
	f := newRoomFixture()
	f.rooms.On("ExistsBySlug", mock.Anything, "board-room").Return(true, nil)

	_, err := f.svc.Create(context.Background(), CreateRoomRequest{Name: "Board Room", Capacity: 10})

	assert.ErrorIs(t, err, ErrSlugTaken)
	f.rooms.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomService_Create_UnknownAmenity(t *testing.T) {
	f := newRoomFixture()
	f.rooms.On("ExistsBySlug", mock.Anything, "focus").Return(false, nil)
	f.amenities.On("FindByIDs", mock.Anything, mock.Anything).Return([]room.Amenity{}, nil)

	_, err := f.svc.Create(context.Background(), CreateRoomRequest{Name: "Focus", Capacity: 2, AmenityIDs: []uuid.UUID{uuid.New()}})

	assert.ErrorIs(t, err, ErrUnknownAmenity)
}

func TestRoomService_Create_ExplicitSlugMustBeNormalized(t *testing.T) {
	f := newRoomFixture()

	_, err := f.svc.Create(context.Background(), CreateRoomRequest{Name: "Focus", Slug: "Focus Room", Capacity: 2})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_SLUG", de.Code)
}

func TestRoomService_Get_PublicIsCached(t *testing.T) {
	f := newRoomFixture()
	r := newTestRoom(t, "Atlas")
	f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil).Once()

	first, err := f.svc.Get(context.Background(), r.ID, false)
	require.NoError(t, err)
	second, err := f.svc.Get(context.Background(), r.ID, false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "atlas", second.Slug)
	f.rooms.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestRoomService_Get_PublicHidesInactive(t *testing.T) {
	f := newRoomFixture()
	r := newTestRoom(t, "Atlas")
	require.NoError(t, r.Deactivate())
	f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)

	_, err := f.svc.Get(context.Background(), r.ID, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.svc.Get(context.Background(), r.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
}

func TestRoomService_Get_LoadRacingInvalidateIsNotServed(t *testing.T) {
	f := newRoomFixture()
	ctx := context.Background()
	stale := newTestRoom(t, "Atlas")
	fresh := *stale
	fresh.Name = "Atlas North"

	// a write commits and invalidates while the first read is loading
	f.rooms.On("FindByID", mock.Anything, stale.ID).
		Run(func(mock.Arguments) { require.NoError(t, f.cache.Invalidate(ctx)) }).
		Return(stale, nil).Once()
	f.rooms.On("FindByID", mock.Anything, stale.ID).Return(&fresh, nil).Once()

	first, err := f.svc.Get(ctx, stale.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Atlas", first.Name)
	assert.Zero(t, f.cache.live())

	second, err := f.svc.Get(ctx, stale.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Atlas North", second.Name)
	f.rooms.AssertNumberOfCalls(t, "FindByID", 2)

	third, err := f.svc.Get(ctx, stale.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Atlas North", third.Name)
	f.rooms.AssertNumberOfCalls(t, "FindByID", 2)
}

func TestRoomService_Get_CacheErrorFallsThrough(t *testing.T) {
	f := newRoomFixture()
	f.cache.failGet = true
	r := newTestRoom(t, "Atlas")
	f.rooms.On("FindBySlug", mock.Anything, "atlas").Return(r, nil)

	resp, err := f.svc.GetBySlug(context.Background(), " Atlas ")

	require.NoError(t, err)
	assert.Equal(t, r.ID, resp.ID)
	assert.Empty(t, f.cache.entries, "a read with an unknown generation is not cached")
}

func TestRoomService_List(t *testing.T) {
	t.Run("public list forces active status and is cached", func(t *testing.T) {
		f := newRoomFixture()
		a := newTestRoom(t, "Atlas")
		f.rooms.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters[room.FilterStatus] == room.StatusActive &&
				filter.Filters[room.FilterMinCapacity] == 4 &&
				filter.OrderBy == "name"
		})).Return([]room.Room{*a}, int64(1), nil).Once()

		req := RoomListFilter{Status: "inactive", MinCapacity: 4}
		res, err := f.svc.List(context.Background(), req, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Total)

		_, err = f.svc.List(context.Background(), req, false)
		require.NoError(t, err)
		f.rooms.AssertNumberOfCalls(t, "FindAll", 1)
	})

	t.Run("admin list honours the status filter", func(t *testing.T) {
		f := newRoomFixture()
		f.rooms.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters[room.FilterStatus] == room.StatusMaintenance
		})).Return([]room.Room{}, int64(0), nil)

		_, err := f.svc.List(context.Background(), RoomListFilter{Status: "maintenance"}, true)
		require.NoError(t, err)
		_, err = f.svc.List(context.Background(), RoomListFilter{Status: "maintenance"}, true)
		require.NoError(t, err)

		f.rooms.AssertNumberOfCalls(t, "FindAll", 2)
	})

	t.Run("amenity filter", func(t *testing.T) {
		f := newRoomFixture()
		id := uuid.New()
		f.rooms.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			ids, ok := filter.Filters[room.FilterAmenityIDs].([]uuid.UUID)
			return ok && len(ids) == 1 && ids[0] == id
		})).Return([]room.Room{}, int64(0), nil)

		_, err := f.svc.List(context.Background(), RoomListFilter{AmenityIDs: []string{id.String()}}, false)
		require.NoError(t, err)
	})

	t.Run("malformed amenity id", func(t *testing.T) {
		f := newRoomFixture()

		_, err := f.svc.List(context.Background(), RoomListFilter{AmenityIDs: []string{"nope"}}, false)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_AMENITY", de.Code)
	})
}

func TestRoomListFilter_CacheKeyIgnoresAmenityOrder(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	k1 := RoomListFilter{AmenityIDs: []string{a, b}}.cacheKey()
	k2 := RoomListFilter{AmenityIDs: []string{b, a}}.cacheKey()
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, RoomListFilter{AmenityIDs: []string{a}}.cacheKey())
}

func TestRoomService_WritesInvalidateCache(t *testing.T) {
	f := newRoomFixture()
	r := newTestRoom(t, "Atlas")
	f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	f.rooms.On("Save", mock.Anything, r).Return(nil)

	_, err := f.svc.Get(context.Background(), r.ID, false)
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.live())

	_, err = f.svc.SetStatus(context.Background(), r.ID, SetStatusRequest{Status: "maintenance"})
	require.NoError(t, err)

	assert.Zero(t, f.cache.live())
	assert.Equal(t, room.StatusMaintenance, r.Status)
}

func TestRoomService_Update_Rename(t *testing.T) {
	f := newRoomFixture()
	r := newTestRoom(t, "Atlas")
	f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	f.rooms.On("ExistsBySlug", mock.Anything, "atlas-north").Return(false, nil)
	f.rooms.On("Save", mock.Anything, r).Return(nil)

	resp, err := f.svc.Update(context.Background(), r.ID, UpdateRoomRequest{Name: "Atlas North", Slug: "atlas-north", Capacity: 14})

	require.NoError(t, err)
	assert.Equal(t, "atlas-north", resp.Slug)
	assert.Equal(t, 14, resp.Capacity)
}

func TestRoomService_SetAmenities(t *testing.T) {
	f := newRoomFixture()
	r := newTestRoom(t, "Atlas")
	wb := newTestAmenity(t, "Whiteboard")
	f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	f.amenities.On("FindByIDs", mock.Anything, []uuid.UUID{wb.ID}).Return([]room.Amenity{*wb}, nil)
	f.rooms.On("Save", mock.Anything, r).Return(nil)

	resp, err := f.svc.SetAmenities(context.Background(), r.ID, SetAmenitiesRequest{AmenityIDs: []uuid.UUID{wb.ID}})

	require.NoError(t, err)
	require.Len(t, resp.Amenities, 1)
	assert.True(t, r.HasAmenity(wb.ID))
}

func TestRoomService_Delete(t *testing.T) {
	t.Run("refused with upcoming bookings", func(t *testing.T) {
		f := newRoomFixture()
		r := newTestRoom(t, "Atlas")
		f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.bookings.On("HasFutureForRoom", mock.Anything, r.ID, f.now).Return(true, nil)

		err := f.svc.Delete(context.Background(), r.ID)

		assert.ErrorIs(t, err, ErrRoomHasBookings)
		f.rooms.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("removes room and image", func(t *testing.T) {
		f := newRoomFixture()
		r := newTestRoom(t, "Atlas")
		r.ImageKey = "rooms/" + r.ID.String() + "/a.jpg"
		f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.bookings.On("HasFutureForRoom", mock.Anything, r.ID, f.now).Return(false, nil)
		f.rooms.On("Delete", mock.Anything, r.ID).Return(nil)
		f.storage.On("DeleteObject", mock.Anything, r.ImageKey).Return(nil)

		require.NoError(t, f.svc.Delete(context.Background(), r.ID))

		f.storage.AssertExpectations(t)
		assert.Equal(t, 1, f.cache.invalidated)
	})
}

func TestRoomService_ConfirmImage(t *testing.T) {
	f := newRoomFixture()
	r := newTestRoom(t, "Atlas")
	key := "rooms/" + r.ID.String() + "/new.webp"
	f.storage.On("ObjectExists", mock.Anything, key).Return(true, nil)
	f.rooms.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	f.rooms.On("Save", mock.Anything, r).Return(nil)
	f.storage.On("GenerateDownloadURL", mock.Anything, key, time.Minute).Return("https://cdn/new.webp", f.now, nil)

	resp, err := f.svc.ConfirmImage(context.Background(), r.ID, ConfirmImageRequest{StorageKey: key})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/new.webp", resp.ImageURL)
}

func TestRoomService_ConfirmImage_NotUploaded(t *testing.T) {
	f := newRoomFixture()
	id := uuid.New()
	key := "rooms/" + id.String() + "/new.webp"
	f.storage.On("ObjectExists", mock.Anything, key).Return(false, nil)

	_, err := f.svc.ConfirmImage(context.Background(), id, ConfirmImageRequest{StorageKey: key})

	assert.ErrorIs(t, err, media.ErrNotUploaded)
}
