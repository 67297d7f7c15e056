package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already processed, such as
// payment provider event IDs that may be delivered more than once.
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it was seen before
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key so a failed attempt can be retried
	Forget(ctx context.Context, key string) error

	Close() error
}
