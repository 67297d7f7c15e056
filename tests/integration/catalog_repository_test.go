//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepository_SlugAndAmenities(t *testing.T) {
	tdb := NewTestDB(t)
	r := newRepos(tdb)
	ctx := context.Background()

	wifi, err := room.NewAmenity("Wi-Fi", "wifi", "")
	require.NoError(t, err)
	require.NoError(t, r.amenities.Save(ctx, wifi))
	screen, err := room.NewAmenity("Screen", "tv", "65 inch")
	require.NoError(t, err)
	require.NoError(t, r.amenities.Save(ctx, screen))

	dup, err := room.NewAmenity("Wi-Fi", "wifi", "")
	require.NoError(t, err)
	err = r.amenities.Save(ctx, dup)
	assert.ErrorIs(t, err, shared.NewDomainError("AMENITY_EXISTS", ""))

	atlas := r.room(t, "Atlas Room")
	atlas.SetAmenities([]uuid.UUID{wifi.ID, screen.ID})
	require.NoError(t, r.rooms.Save(ctx, atlas))

	got, err := r.rooms.FindBySlug(ctx, "ATLAS-ROOM")
	require.NoError(t, err)
	assert.Equal(t, atlas.ID, got.ID)
	assert.ElementsMatch(t, []uuid.UUID{wifi.ID, screen.ID}, got.AmenityIDs)

	atlas.SetAmenities([]uuid.UUID{screen.ID})
	require.NoError(t, r.rooms.Save(ctx, atlas))
	got, err = r.rooms.FindByID(ctx, atlas.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{screen.ID}, got.AmenityIDs)

	twin, err := room.NewRoom(room.Details{Name: "atlas room", Capacity: 4})
	require.NoError(t, err)
	err = r.rooms.Save(ctx, twin)
	assert.ErrorIs(t, err, shared.NewDomainError("SLUG_TAKEN", ""))

	_, err = r.rooms.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubscriptionRepository_OnePerUser(t *testing.T) {
	tdb := NewTestDB(t)
	r := newRepos(tdb)
	ctx := context.Background()

	user := r.profile(t)
	sub, err := billing.NewFreeSubscription(user.ID)
	require.NoError(t, err)
	require.NoError(t, r.subs.Save(ctx, sub))

	second, err := billing.NewFreeSubscription(user.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, r.subs.Save(ctx, second), shared.ErrAlreadyExists)

	got, err := r.subs.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	byPlan, err := r.subs.CountByPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[billing.PlanID]int64{billing.PlanFree: 1}, byPlan)

	// Deleting the profile cascades to its subscription
	require.NoError(t, r.profiles.Delete(ctx, user.ID))
	_, err = r.subs.FindByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
