package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAmenityRepository implements room.AmenityRepository using GORM
type GormAmenityRepository struct {
	db *gorm.DB
}

// NewGormAmenityRepository creates a new GormAmenityRepository
func NewGormAmenityRepository(db *gorm.DB) *GormAmenityRepository {
	return &GormAmenityRepository{db: db}
}

// FindByID finds an amenity by its ID
func (r *GormAmenityRepository) FindByID(ctx context.Context, id uuid.UUID) (*room.Amenity, error) {
	var amenity room.Amenity
	if err := r.db.WithContext(ctx).First(&amenity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &amenity, nil
}

// FindByIDs finds multiple amenities by their IDs, ordered by name
func (r *GormAmenityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]room.Amenity, error) {
	if len(ids) == 0 {
		return []room.Amenity{}, nil
	}
	var amenities []room.Amenity
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&amenities).Error; err != nil {
		return nil, err
	}
	return amenities, nil
}

// FindAll returns one page of amenities and the total matching the filter
func (r *GormAmenityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]room.Amenity, int64, error) {
	base := r.db.WithContext(ctx).Model(&room.Amenity{})
	if filter.Search != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var amenities []room.Amenity
	if err := paginate(base.Order(orderClause(filter.OrderBy, filter.OrderDir, AmenitySortFields, "name")), filter).
		Find(&amenities).Error; err != nil {
		return nil, 0, err
	}
	return amenities, total, nil
}

// Save creates or updates an amenity
func (r *GormAmenityRepository) Save(ctx context.Context, amenity *room.Amenity) error {
	if err := r.db.WithContext(ctx).Save(amenity).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError("AMENITY_EXISTS", "An amenity with this name already exists")
		}
		return err
	}
	return nil
}

// Delete removes the amenity and its room links
func (r *GormAmenityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("amenity_id = ?", id).Delete(&models.RoomAmenityModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&room.Amenity{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByName checks case-insensitively whether another amenity uses the name
func (r *GormAmenityRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&room.Amenity{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormAmenityRepository implements AmenityRepository
var _ room.AmenityRepository = (*GormAmenityRepository)(nil)
