package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// RecordingEventHandler is a shared.EventHandler that records what it receives.
// It can be told to fail or panic to exercise the bus's error isolation.
type RecordingEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

// NewRecordingEventHandler creates a handler for the given event types; none
// means every event
func NewRecordingEventHandler(eventTypes ...string) *RecordingEventHandler {
	return &RecordingEventHandler{eventTypes: eventTypes}
}

// EventTypes returns the event types this handler subscribes to
func (h *RecordingEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and then fails or panics if told to
func (h *RecordingEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	err, p := h.err, h.panicWith
	h.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return err
}

// Handled returns a copy of the recorded events
func (h *RecordingEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

// HandledCount returns the number of recorded events
func (h *RecordingEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// FailWith makes Handle return err
func (h *RecordingEventHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// PanicWith makes Handle panic with v
func (h *RecordingEventHandler) PanicWith(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panicWith = v
}

// Reset clears recorded events and failure settings
func (h *RecordingEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
	h.panicWith = nil
}

// TestEvent is a minimal domain event
type TestEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

// NewTestEvent creates an event of the given type on a random aggregate
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test-data",
	}
}

// WaitForEventCount waits until the handler has recorded at least count events
func WaitForEventCount(t *testing.T, handler *RecordingEventHandler, count int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool {
		return handler.HandledCount() >= count
	}, timeout, 10*time.Millisecond)
}
