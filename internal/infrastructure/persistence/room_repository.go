package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoomRepository implements room.RoomRepository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID finds a room by its ID
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindBySlug finds a room by its slug
func (r *GormRoomRepository) FindBySlug(ctx context.Context, slug string) (*room.Room, error) {
	return r.findOne(ctx, "slug = ?", strings.ToLower(strings.TrimSpace(slug)))
}

func (r *GormRoomRepository) findOne(ctx context.Context, cond string, arg any) (*room.Room, error) {
	var rm room.Room
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&rm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rooms := []room.Room{rm}
	if err := r.loadAmenityIDs(ctx, rooms); err != nil {
		return nil, err
	}
	return &rooms[0], nil
}

// FindAll returns one page of rooms and the total matching the filter
func (r *GormRoomRepository) FindAll(ctx context.Context, filter shared.Filter) ([]room.Room, int64, error) {
	base := r.applyConditions(r.db.WithContext(ctx).Model(&room.Room{}), filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []room.Room
	if err := paginate(base.Order(orderClause(filter.OrderBy, filter.OrderDir, RoomSortFields, "name")), filter).
		Find(&rooms).Error; err != nil {
		return nil, 0, err
	}
	if err := r.loadAmenityIDs(ctx, rooms); err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// Save upserts the room and replaces its amenity links in one transaction
func (r *GormRoomRepository) Save(ctx context.Context, rm *room.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rm).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", rm.ID).Delete(&models.RoomAmenityModel{}).Error; err != nil {
			return err
		}
		if len(rm.AmenityIDs) == 0 {
			return nil
		}
		links := models.RoomAmenityModels(rm.ID, rm.AmenityIDs, time.Now().UTC())
		return tx.Create(&links).Error
	})
	if isUniqueViolation(err) {
		return shared.NewDomainError("SLUG_TAKEN", "A room with this name already exists")
	}
	return err
}

// Delete removes the room and its amenity links
func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&models.RoomAmenityModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&room.Room{}, "id = ?", id)
		if result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				return shared.NewDomainError("ROOM_IN_USE", "Room has booking history; deactivate it instead")
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsBySlug checks if a room uses the slug
func (r *GormRoomRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&room.Room{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts all rooms
func (r *GormRoomRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&room.Room{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type statusCount struct {
	Status string
	Count  int64
}

// CountByStatus groups rooms by status
func (r *GormRoomRepository) CountByStatus(ctx context.Context) (map[room.Status]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&room.Room{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[room.Status]int64, len(rows))
	for _, row := range rows {
		out[room.Status(row.Status)] = row.Count
	}
	return out, nil
}

// loadAmenityIDs fills AmenityIDs for every room with a single query
func (r *GormRoomRepository) loadAmenityIDs(ctx context.Context, rooms []room.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rooms))
	index := make(map[uuid.UUID]int, len(rooms))
	for i := range rooms {
		ids[i] = rooms[i].ID
		index[rooms[i].ID] = i
		rooms[i].AmenityIDs = []uuid.UUID{}
	}

	var links []models.RoomAmenityModel
	if err := r.db.WithContext(ctx).
		Where("room_id IN ?", ids).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return err
	}
	for _, link := range links {
		if i, ok := index[link.RoomID]; ok {
			rooms[i].AmenityIDs = append(rooms[i].AmenityIDs, link.AmenityID)
		}
	}
	return nil
}

func (r *GormRoomRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
			pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case room.FilterStatus:
			query = query.Where("status = ?", value)
		case room.FilterMinCapacity:
			query = query.Where("capacity >= ?", value)
		case room.FilterLocation:
			if loc, ok := value.(string); ok && loc != "" {
				query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
			}
		case room.FilterAmenityIDs:
			if ids, ok := value.([]uuid.UUID); ok && len(ids) > 0 {
				query = query.Where("id IN (?)", r.db.
					Model(&models.RoomAmenityModel{}).
					Select("room_id").
					Where("amenity_id IN ?", ids).
					Group("room_id").
					Having("COUNT(DISTINCT amenity_id) = ?", len(ids)))
			}
		}
	}
	return query
}

// Ensure GormRoomRepository implements RoomRepository
var _ room.RoomRepository = (*GormRoomRepository)(nil)
