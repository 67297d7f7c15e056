package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingEventHandler(t *testing.T) {
	handler := NewRecordingEventHandler("BookingCreated", "BookingCancelled")
	assert.Equal(t, []string{"BookingCreated", "BookingCancelled"}, handler.EventTypes())

	event := NewTestEvent("BookingCreated")
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Equal(t, 1, handler.HandledCount())
	assert.Same(t, event, handler.Handled()[0])
}

func TestRecordingEventHandler_FailAndPanic(t *testing.T) {
	handler := NewRecordingEventHandler()

	handler.FailWith(assert.AnError)
	assert.ErrorIs(t, handler.Handle(context.Background(), NewTestEvent("X")), assert.AnError)

	handler.PanicWith("boom")
	assert.PanicsWithValue(t, "boom", func() {
		_ = handler.Handle(context.Background(), NewTestEvent("X"))
	})
	assert.Equal(t, 2, handler.HandledCount())

	handler.Reset()
	assert.Zero(t, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), NewTestEvent("X")))
}

func TestNewTestEvent(t *testing.T) {
	a := NewTestEvent("RoomCreated")
	b := NewTestEvent("RoomCreated")

	assert.Equal(t, "RoomCreated", a.EventType())
	assert.NotEqual(t, a.EventID(), b.EventID())
	assert.NotEqual(t, a.AggregateID(), b.AggregateID())
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewRecordingEventHandler()
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("X"))
	}()

	assert.True(t, WaitForEventCount(t, handler, 1, time.Second))
	assert.False(t, WaitForEventCount(t, handler, 2, 30*time.Millisecond))
}
