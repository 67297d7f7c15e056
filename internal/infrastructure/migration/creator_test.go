package migration

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bookings table", "add_bookings_table"},
		{"Add-Room-Floor", "add_room_floor"},
		{"ADD_ROOM_FLOOR", "add_room_floor"},
		{"add__room__floor", "add_room_floor"},
		{"Index 2 bookings", "index_2_bookings"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))

	mf, err := CreateMigration(dir, "Add room floor", "Floors for rooms", now)
	require.NoError(t, err)

	assert.Equal(t, "20260304040607", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260304040607_add_room_floor.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260304040607_add_room_floor.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add room floor")
	assert.Contains(t, string(up), "Floors for rooms")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "", time.Now())
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "", time.Now())
	assert.Error(t, err)
}

func TestCreateMigration_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	_, err := CreateMigration(dir, "same", "", now)
	require.NoError(t, err)
	_, err = CreateMigration(dir, "same", "", now)
	assert.Error(t, err)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("-- test"), 0o644))
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"20260102000000_add_rooms.up.sql",
		"20260102000000_add_rooms.down.sql",
		"20260101000000_init.up.sql",
		"20260101000000_init.down.sql",
		"20260103000000_add_bookings.up.sql",
		"20260103000000_add_bookings.down.sql",
	)

	entries, err := ListMigrations(dir, 20260102000000)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Version: 20260101000000, Name: "init", Applied: true},
		{Version: 20260102000000, Name: "add_rooms", Applied: true},
		{Version: 20260103000000, Name: "add_bookings", Applied: false},
	}, entries)
}

func TestListMigrations_NothingApplied(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "20260101000000_init.up.sql")

	entries, err := ListMigrations(dir, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Applied)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	entries, err := ListMigrations("/nonexistent/path/to/migrations", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListMigrations_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"20260101000000_init.up.sql",
		"20260101000000_init.down.sql",
		"README.md",
		"noversion.up.sql",
		"abc_bad.up.sql",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "1_subdir.up.sql"), 0o755))

	entries, err := ListMigrations(dir, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "init", entries[0].Name)
}

// The shipped schema must come in complete pairs and keep the overlap guard.
func TestShippedMigrations(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")

	entries, err := ListMigrations(dir, 0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var all strings.Builder
	for _, e := range entries {
		base := filepath.Join(dir, strconv.FormatUint(uint64(e.Version), 10)+"_"+e.Name)
		up, err := os.ReadFile(base + ".up.sql")
		require.NoError(t, err)
		_, err = os.Stat(base + ".down.sql")
		require.NoError(t, err, "missing down migration for %s", e.Name)
		all.Write(up)
	}

	schema := all.String()
	assert.Contains(t, schema, "CREATE EXTENSION IF NOT EXISTS btree_gist")
	assert.Contains(t, schema, "tstzrange(start_at, end_at, '[)') WITH &&")
	assert.Contains(t, schema, "WHERE (status IN ('pending', 'confirmed'))")
}
