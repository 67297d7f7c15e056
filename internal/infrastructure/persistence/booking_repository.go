package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBookingRepository implements booking.BookingRepository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

var activeStatuses = []string{string(booking.StatusPending), string(booking.StatusConfirmed)}

// FindByID finds a booking by its ID
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var b booking.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByReference finds a booking by its public reference
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	var b booking.Booking
	if err := r.db.WithContext(ctx).
		Where("reference = ?", strings.TrimSpace(reference)).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindAll returns one page of bookings and the total matching the filter
func (r *GormBookingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]booking.Booking, int64, error) {
	base := r.applyConditions(r.db.WithContext(ctx).Model(&booking.Booking{}), filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []booking.Booking
	if err := paginate(base.Order(orderClause(filter.OrderBy, filter.OrderDir, BookingSortFields, "start_at")), filter).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindForUser is FindAll restricted to one user's bookings
func (r *GormBookingRepository) FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]booking.Booking, int64, error) {
	return r.FindAll(ctx, filter.With(booking.FilterUserID, userID))
}

// FindOverlapping returns active bookings of the room intersecting the half-open range
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, tr shared.TimeRange, excludeID *uuid.UUID) ([]booking.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ? AND start_at < ? AND end_at > ?",
			roomID, activeStatuses, tr.End, tr.Start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var bookings []booking.Booking
	if err := query.Order("start_at ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindActiveForRoomBetween returns active bookings of the room intersecting [from, to)
func (r *GormBookingRepository) FindActiveForRoomBetween(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]booking.Booking, error) {
	var bookings []booking.Booking
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ? AND start_at < ? AND end_at > ?",
			roomID, activeStatuses, to.UTC(), from.UTC()).
		Order("start_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountForUserBetween counts the user's non-cancelled bookings starting in [from, to)
func (r *GormBookingRepository) CountForUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("user_id = ? AND status <> ? AND start_at >= ? AND start_at < ?",
			userID, booking.StatusCancelled, from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a booking. A violation of the room/time exclusion
// constraint is reported as booking.ErrSlotTaken.
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		if isExclusionViolation(err) {
			return booking.ErrSlotTaken
		}
		return err
	}
	return nil
}

// Delete deletes a booking
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&booking.Booking{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus groups all bookings by status
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[booking.Status]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[booking.Status]int64, len(rows))
	for _, row := range rows {
		out[booking.Status(row.Status)] = row.Count
	}
	return out, nil
}

// CountStartingBetween counts active bookings starting in [from, to)
func (r *GormBookingRepository) CountStartingBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("status IN ? AND start_at >= ? AND start_at < ?", activeStatuses, from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CompletePast moves confirmed bookings that ended at or before now to completed
func (r *GormBookingRepository) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	result := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("status = ? AND end_at <= ?", booking.StatusConfirmed, now).
		UpdateColumns(map[string]any{
			"status":       booking.StatusCompleted,
			"completed_at": now,
			"updated_at":   now,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// HasFutureForRoom reports whether the room has an active booking ending after now
func (r *GormBookingRepository) HasFutureForRoom(ctx context.Context, roomID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("room_id = ? AND status IN ? AND end_at > ?", roomID, activeStatuses, now.UTC()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBookingRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(reference) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case booking.FilterRoomID:
			query = query.Where("room_id = ?", value)
		case booking.FilterUserID:
			query = query.Where("user_id = ?", value)
		case booking.FilterStatus:
			query = query.Where("status = ?", value)
		case booking.FilterFrom:
			query = query.Where("end_at > ?", value)
		case booking.FilterTo:
			query = query.Where("start_at < ?", value)
		}
	}
	return query
}

// Ensure GormBookingRepository implements BookingRepository
var _ booking.BookingRepository = (*GormBookingRepository)(nil)
