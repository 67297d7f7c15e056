package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/roombook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix is used when no subject prefix is configured
const DefaultSubjectPrefix = "roombook.events"

// Publisher is the part of *nats.Conn the forwarder needs
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Envelope is the message body written to NATS
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSForwarder is a wildcard event handler that republishes every domain
// event on the subject <prefix>.<aggregate type>.<event type>.
type NATSForwarder struct {
	conn   Publisher
	prefix string
	logger *zap.Logger
}

// NewNATSForwarder creates a forwarder writing to conn
func NewNATSForwarder(conn Publisher, prefix string, logger *zap.Logger) *NATSForwarder {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSForwarder{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the subject an event is published on
func (f *NATSForwarder) Subject(event shared.DomainEvent) string {
	return fmt.Sprintf("%s.%s.%s", f.prefix, strings.ToLower(event.AggregateType()), event.EventType())
}

// Handle implements shared.EventHandler
func (f *NATSForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}
	body, err := json.Marshal(Envelope{
		ID:            event.EventID(),
		Type:          event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	subject := f.Subject(event)
	if err := f.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	f.logger.Debug("event forwarded", zap.String("subject", subject), zap.String("event_id", event.EventID().String()))
	return nil
}

// EventTypes returns nil so the forwarder receives every event
func (f *NATSForwarder) EventTypes() []string {
	return nil
}

// ConnectNATS dials the server with backoff. The returned connection keeps
// reconnecting on its own once established.
func ConnectNATS(ctx context.Context, url string, attempts int, logger *zap.Logger) (*nats.Conn, error) {
	if attempts < 1 {
		attempts = 1
	}
	var conn *nats.Conn
	err := retry.Do(func() error {
		c, err := nats.Connect(url,
			nats.Name("roombook-backend"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("NATS disconnected", zap.Error(err))
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
			}),
		)
		if err != nil {
			return err
		}
		conn = c
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("NATS not reachable, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

// Ensure NATSForwarder implements EventHandler
var _ shared.EventHandler = (*NATSForwarder)(nil)
