package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a testify mock of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Profile, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) Save(ctx context.Context, p *identity.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProfileRepository) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProfileRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockSubscriptionRepository is a testify mock of billing.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) find(args mock.Arguments) (*billing.Subscription, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	return m.find(m.Called(ctx, id))
}

func (m *MockSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	return m.find(m.Called(ctx, userID))
}

func (m *MockSubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, id string) (*billing.Subscription, error) {
	return m.find(m.Called(ctx, id))
}

func (m *MockSubscriptionRepository) FindByStripeCustomerID(ctx context.Context, id string) (*billing.Subscription, error) {
	return m.find(m.Called(ctx, id))
}

func (m *MockSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Subscription, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, s *billing.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionRepository) CountByPlan(ctx context.Context) (map[billing.PlanID]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[billing.PlanID]int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByStatus(ctx context.Context) (map[billing.SubscriptionStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[billing.SubscriptionStatus]int64), args.Error(1)
}

// MockRoomRepository is a testify mock of room.RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*room.Room), args.Error(1)
}

func (m *MockRoomRepository) FindBySlug(ctx context.Context, slug string) (*room.Room, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*room.Room), args.Error(1)
}

func (m *MockRoomRepository) FindAll(ctx context.Context, filter shared.Filter) ([]room.Room, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]room.Room), args.Get(1).(int64), args.Error(2)
}

func (m *MockRoomRepository) Save(ctx context.Context, r *room.Room) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoomRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoomRepository) CountByStatus(ctx context.Context) (map[room.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[room.Status]int64), args.Error(1)
}

// MockAmenityRepository is a testify mock of room.AmenityRepository
type MockAmenityRepository struct {
	mock.Mock
}

func (m *MockAmenityRepository) FindByID(ctx context.Context, id uuid.UUID) (*room.Amenity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*room.Amenity), args.Error(1)
}

func (m *MockAmenityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]room.Amenity, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]room.Amenity), args.Error(1)
}

func (m *MockAmenityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]room.Amenity, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]room.Amenity), args.Get(1).(int64), args.Error(2)
}

func (m *MockAmenityRepository) Save(ctx context.Context, a *room.Amenity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAmenityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAmenityRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockBookingRepository is a testify mock of booking.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]booking.Booking, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]booking.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]booking.Booking, int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]booking.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, r shared.TimeRange, excludeID *uuid.UUID) ([]booking.Booking, error) {
	args := m.Called(ctx, roomID, r, excludeID)
	return args.Get(0).([]booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindActiveForRoomBetween(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]booking.Booking, error) {
	args := m.Called(ctx, roomID, from, to)
	return args.Get(0).([]booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountForUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBookingRepository) CountByStatus(ctx context.Context) (map[booking.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[booking.Status]int64), args.Error(1)
}

func (m *MockBookingRepository) CountStartingBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) HasFutureForRoom(ctx context.Context, roomID uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, roomID, now)
	return args.Bool(0), args.Error(1)
}

// MockObjectStorage is a testify mock of media.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// Compile-time checks
var (
	_ identity.ProfileRepository     = (*MockProfileRepository)(nil)
	_ billing.SubscriptionRepository = (*MockSubscriptionRepository)(nil)
	_ room.RoomRepository            = (*MockRoomRepository)(nil)
	_ room.AmenityRepository         = (*MockAmenityRepository)(nil)
	_ booking.BookingRepository      = (*MockBookingRepository)(nil)
)
