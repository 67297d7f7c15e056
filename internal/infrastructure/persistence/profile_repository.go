package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProfileRepository implements identity.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByID finds a profile by its ID
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	var profile identity.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// FindByEmail finds a profile by its normalized email
func (r *GormProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	var profile identity.Profile
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// FindAll returns one page of profiles and the total matching the filter
func (r *GormProfileRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Profile, int64, error) {
	base := r.applyConditions(r.db.WithContext(ctx).Model(&identity.Profile{}), filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []identity.Profile
	err := paginate(base.Order(orderClause(filter.OrderBy, filter.OrderDir, ProfileSortFields, "created_at")), filter).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// Save creates or updates a profile
func (r *GormProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError("EMAIL_TAKEN", "Another account already uses this email")
		}
		return err
	}
	return nil
}

// Delete deletes a profile together with its subscription in one transaction
func (r *GormProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&billing.Subscription{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&identity.Profile{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// TouchLastSeen records activity without bumping the aggregate version
func (r *GormProfileRepository) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&identity.Profile{}).
		Where("id = ?", id).
		UpdateColumn("last_seen_at", time.Now().UTC()).Error
}

// Count counts all profiles
func (r *GormProfileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.Profile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByRole counts profiles holding the role
func (r *GormProfileRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Profile{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if a profile uses the email
func (r *GormProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Profile{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormProfileRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "role":
			query = query.Where("role = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}

// Ensure GormProfileRepository implements ProfileRepository
var _ identity.ProfileRepository = (*GormProfileRepository)(nil)
