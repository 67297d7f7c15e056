//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type repos struct {
	profiles  *persistence.GormProfileRepository
	rooms     *persistence.GormRoomRepository
	amenities *persistence.GormAmenityRepository
	bookings  *persistence.GormBookingRepository
	subs      *persistence.GormSubscriptionRepository
}

func newRepos(tdb *TestDB) repos {
	return repos{
		profiles:  persistence.NewGormProfileRepository(tdb.DB),
		rooms:     persistence.NewGormRoomRepository(tdb.DB),
		amenities: persistence.NewGormAmenityRepository(tdb.DB),
		bookings:  persistence.NewGormBookingRepository(tdb.DB),
		subs:      persistence.NewGormSubscriptionRepository(tdb.DB),
	}
}

func (r repos) profile(t *testing.T) *identity.Profile {
	t.Helper()
	p, err := identity.NewProfile(uuid.New(), gofakeit.Email())
	require.NoError(t, err)
	require.NoError(t, r.profiles.Save(context.Background(), p))
	return p
}

func (r repos) room(t *testing.T, name string) *room.Room {
	t.Helper()
	rm, err := room.NewRoom(room.Details{
		Name:       name,
		Location:   gofakeit.City(),
		Capacity:   8,
		HourlyRate: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	require.NoError(t, r.rooms.Save(context.Background(), rm))
	return rm
}

func newBooking(t *testing.T, roomID, userID uuid.UUID, start time.Time, d time.Duration) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.Draft{
		RoomID:    roomID,
		UserID:    userID,
		Title:     gofakeit.Sentence(3),
		Attendees: 2,
		Slot:      shared.TimeRange{Start: start, End: start.Add(d)},
		Price:     decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	return b
}

// nextMonday10 is a weekday morning far enough ahead to be bookable
func nextMonday10() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.UTC)
}
