package room

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{
		Name:       "Salle Étoile",
		Location:   "HQ, North wing",
		Floor:      3,
		Capacity:   8,
		HourlyRate: decimal.RequireFromString("25.00"),
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Salle Étoile":         "salle-etoile",
		"  Board Room #1  ":    "board-room-1",
		"Ünïcödé -- Room":      "unicode-room",
		"!!!":                  "",
		"Café_Crème/Lounge 42": "cafe-creme-lounge-42",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewRoom(t *testing.T) {
	t.Run("creates active room with slug", func(t *testing.T) {
		r, err := NewRoom(validDetails())
		require.NoError(t, err)

		assert.Equal(t, "salle-etoile", r.Slug)
		assert.Equal(t, StatusActive, r.Status)
		assert.True(t, r.IsBookable())
		assert.Empty(t, r.AmenityIDs)
		require.Len(t, r.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeRoomCreated, r.GetDomainEvents()[0].EventType())
	})

	t.Run("validates fields", func(t *testing.T) {
		cases := map[string]func(d *Details){
			"INVALID_NAME":     func(d *Details) { d.Name = " " },
			"INVALID_CAPACITY": func(d *Details) { d.Capacity = 0 },
			"INVALID_RATE":     func(d *Details) { d.HourlyRate = decimal.NewFromInt(-1) },
		}
		for code, mutate := range cases {
			d := validDetails()
			mutate(&d)
			_, err := NewRoom(d)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr, code)
			assert.Equal(t, code, domainErr.Code)
		}

		d := validDetails()
		d.Capacity = MaxCapacity + 1
		_, err := NewRoom(d)
		assert.Error(t, err)
	})

	t.Run("measures names in characters", func(t *testing.T) {
		d := validDetails()
		d.Name = strings.Repeat("É", 100)
		d.Location = strings.Repeat("ø", 200)
		_, err := NewRoom(d)
		require.NoError(t, err)

		d.Name = strings.Repeat("É", 101)
		_, err = NewRoom(d)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
	})

	t.Run("rejects names without slug characters", func(t *testing.T) {
		d := validDetails()
		d.Name = "???"
		_, err := NewRoom(d)
		assert.Error(t, err)
	})
}

func TestRoom_Update(t *testing.T) {
	r, err := NewRoom(validDetails())
	require.NoError(t, err)
	r.ClearDomainEvents()

	d := validDetails()
	d.Name = "Renamed"
	d.Capacity = 12
	require.NoError(t, r.Update(d))

	assert.Equal(t, "Renamed", r.Name)
	assert.Equal(t, "salle-etoile", r.Slug, "slug is stable across renames")
	assert.Equal(t, 12, r.Capacity)
	assert.Equal(t, 2, r.Version)

	require.NoError(t, r.RenameSlug("renamed"))
	assert.Equal(t, "renamed", r.Slug)
	assert.Error(t, r.RenameSlug("Not A Slug"))
}

func TestRoom_StatusTransitions(t *testing.T) {
	r, err := NewRoom(validDetails())
	require.NoError(t, err)

	assert.Error(t, r.Activate())
	require.NoError(t, r.StartMaintenance())
	assert.False(t, r.IsBookable())
	require.NoError(t, r.Deactivate())
	require.NoError(t, r.ChangeStatus(StatusActive))
	assert.True(t, r.IsBookable())
	assert.Error(t, r.ChangeStatus(Status("archived")))

	last := r.GetDomainEvents()[len(r.GetDomainEvents())-1].(*RoomStatusChangedEvent)
	assert.Equal(t, StatusInactive, last.OldStatus)
	assert.Equal(t, StatusActive, last.NewStatus)
}

func TestRoom_SetAmenities(t *testing.T) {
	r, err := NewRoom(validDetails())
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()
	r.SetAmenities([]uuid.UUID{a, b, a, uuid.Nil})

	assert.Equal(t, []uuid.UUID{a, b}, r.AmenityIDs)
	assert.True(t, r.HasAmenity(b))
	assert.False(t, r.HasAmenity(uuid.New()))
}

func TestRoom_PriceFor(t *testing.T) {
	r, err := NewRoom(validDetails())
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("37.50").Equal(r.PriceFor(90*time.Minute)))
	assert.True(t, decimal.RequireFromString("12.50").Equal(r.PriceFor(30*time.Minute)))
	assert.True(t, decimal.Zero.Equal(r.PriceFor(0)))
}

func TestRoom_Image(t *testing.T) {
	r, err := NewRoom(validDetails())
	require.NoError(t, err)

	assert.Error(t, r.SetImage(""))
	require.NoError(t, r.SetImage("rooms/abc.jpg"))
	assert.Equal(t, "rooms/abc.jpg", r.ImageKey)
	r.ClearImage()
	assert.Empty(t, r.ImageKey)
}

func TestAmenity(t *testing.T) {
	a, err := NewAmenity("  Projector ", "projector", "4K projector")
	require.NoError(t, err)
	assert.Equal(t, "Projector", a.Name)

	require.NoError(t, a.Update("Whiteboard", "board", ""))
	assert.Equal(t, "Whiteboard", a.Name)
	assert.Equal(t, 2, a.Version)

	_, err = NewAmenity(strings.Repeat("ö", 100), "", strings.Repeat("ü", 500))
	require.NoError(t, err)

	_, err = NewAmenity("", "", "")
	assert.Error(t, err)
}
