package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/shared"
)

// ProfileRepository defines the interface for profile persistence
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)

	// FindAll supports the filters "role", "status" and a search over email and full name
	FindAll(ctx context.Context, filter shared.Filter) ([]Profile, int64, error)

	Save(ctx context.Context, profile *Profile) error
	// Delete removes the profile and the subscription it owns atomically
	Delete(ctx context.Context, id uuid.UUID) error

	// TouchLastSeen updates last_seen_at without loading the aggregate
	TouchLastSeen(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
