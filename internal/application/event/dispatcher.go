// Package event hands the pending domain events of saved aggregates to the
// event bus.
package event

import (
	"context"

	"github.com/roombook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher publishes domain events after the aggregates raising them were saved.
// Delivery is best effort: the write has already been committed, so a failed
// publish is logged rather than returned.
type Dispatcher struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher. A nil publisher discards events.
func NewDispatcher(publisher shared.EventPublisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{publisher: publisher, logger: logger}
}

// Dispatch drains the pending events of each aggregate and publishes them in order
func (d *Dispatcher) Dispatch(ctx context.Context, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if len(events) == 0 || d == nil || d.publisher == nil {
		return
	}

	if err := d.publisher.Publish(ctx, events...); err != nil {
		types := make([]string, len(events))
		for i, e := range events {
			types[i] = e.EventType()
		}
		d.logger.Error("Failed to publish domain events",
			zap.Strings("event_types", types),
			zap.Error(err),
		)
	}
}
