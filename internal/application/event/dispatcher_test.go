package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

func newProfile(t *testing.T) *identity.Profile {
	t.Helper()
	p, err := identity.NewProfile(uuid.New(), "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, p.PromoteToAdmin())
	return p
}

func TestDispatch_PublishesAndClears(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, zap.NewNop())
	p := newProfile(t)

	d.Dispatch(context.Background(), p)

	require.Len(t, pub.events, 2)
	assert.Equal(t, identity.EventTypeProfileCreated, pub.events[0].EventType())
	assert.Equal(t, identity.EventTypeProfileRoleChanged, pub.events[1].EventType())
	assert.Empty(t, p.GetDomainEvents())

	d.Dispatch(context.Background(), p)
	assert.Len(t, pub.events, 2)
}

func TestDispatch_NilPublisherStillClears(t *testing.T) {
	p := newProfile(t)

	NewDispatcher(nil, nil).Dispatch(context.Background(), p)

	assert.Empty(t, p.GetDomainEvents())
}

func TestDispatch_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	pub := &recordingPublisher{err: errors.New("bus stopped")}
	d := NewDispatcher(pub, zap.New(core))

	d.Dispatch(context.Background(), newProfile(t))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Failed to publish domain events", entry.Message)
	assert.Equal(t, "bus stopped", entry.ContextMap()["error"])
}
