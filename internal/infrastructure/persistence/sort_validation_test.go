package persistence

import (
	"testing"

	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":          "DESC",
		"asc":       "ASC",
		"  Asc ":    "ASC",
		"desc":      "DESC",
		"sideways":  "DESC",
		"ASC; --":   "DESC",
		"ASC, name": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whitelisted", "capacity", "capacity"},
		{"trimmed", "  hourly_rate ", "hourly_rate"},
		{"empty falls back", "", "name"},
		{"case sensitive", "Capacity", "name"},
		{"unknown column", "owner_id", "name"},
		{"expression", "capacity DESC, (SELECT 1)", "name"},
		{"quoted", `"capacity"`, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, RoomSortFields, "name"))
		})
	}
}

func TestSortWhitelists(t *testing.T) {
	assert.True(t, BookingSortFields["start_at"], "bookings are listed by start time")
	assert.True(t, RoomSortFields["capacity"])
	assert.True(t, ProfileSortFields["last_seen_at"])
	assert.True(t, SubscriptionSortFields["current_period_end"])

	for name, fields := range map[string]map[string]bool{
		"profiles":      ProfileSortFields,
		"rooms":         RoomSortFields,
		"amenities":     AmenitySortFields,
		"bookings":      BookingSortFields,
		"subscriptions": SubscriptionSortFields,
	} {
		assert.True(t, fields["id"], "%s must allow the id tiebreaker", name)
		assert.True(t, fields["created_at"], "%s must allow the default order", name)
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "start_at ASC, id ASC", orderClause("start_at", "asc", BookingSortFields, "created_at"))
	assert.Equal(t, "created_at DESC, id ASC", orderClause("password", "sideways", BookingSortFields, "created_at"))
	assert.Equal(t, "id DESC", orderClause("id", "", BookingSortFields, "created_at"))
}

func TestPaginate(t *testing.T) {
	db, _, sqlDB := newMockGorm(t)
	t.Cleanup(func() { sqlDB.Close() })
	dry := db.Session(&gorm.Session{DryRun: true})

	sql := func(f shared.Filter) string {
		var out []booking.Booking
		stmt := paginate(dry.Model(&booking.Booking{}), f).Find(&out).Statement
		return stmt.SQL.String()
	}

	assert.NotContains(t, sql(shared.Filter{}), "LIMIT", "no page size means no limit")
	assert.Contains(t, sql(shared.Filter{Page: 1, PageSize: 20}), "LIMIT $1")
	assert.NotContains(t, sql(shared.Filter{Page: 1, PageSize: 20}), "OFFSET")

	third := sql(shared.Filter{Page: 3, PageSize: 20})
	require.Contains(t, third, "LIMIT $1")
	assert.Contains(t, third, "OFFSET $2")
}
