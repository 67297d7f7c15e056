package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("loading room: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	sameCode := NewDomainError("NOT_FOUND", "Room not found")
	assert.True(t, errors.Is(sameCode, ErrNotFound))
	assert.False(t, errors.Is(sameCode, ErrConflict))
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 45, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(45), p.Total)

	empty := NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFilter_With(t *testing.T) {
	f := DefaultFilter()
	g := f.With("status", "active")

	assert.Equal(t, "active", g.Filters["status"])
	_, ok := f.Filters["status"]
	assert.False(t, ok, "original filter must not change")
	assert.Equal(t, 20, DefaultFilter().PageSize)
	assert.Equal(t, 20, Filter{Page: 2, PageSize: 20}.Offset())
}
