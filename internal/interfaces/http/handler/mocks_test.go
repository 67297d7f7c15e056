package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/admin"
	"github.com/roombook/backend/internal/application/billing"
	"github.com/roombook/backend/internal/application/booking"
	"github.com/roombook/backend/internal/application/identity"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/application/room"
	"github.com/stretchr/testify/mock"
)

type mockRoomService struct{ mock.Mock }

func (m *mockRoomService) Create(ctx context.Context, req room.CreateRoomRequest) (*room.RoomResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) Get(ctx context.Context, id uuid.UUID, admin bool) (*room.RoomResponse, error) {
	args := m.Called(ctx, id, admin)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) GetBySlug(ctx context.Context, slug string) (*room.RoomResponse, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) List(ctx context.Context, f room.RoomListFilter, admin bool) (*room.RoomListResult, error) {
	args := m.Called(ctx, f, admin)
	return args.Get(0).(*room.RoomListResult), args.Error(1)
}

func (m *mockRoomService) Update(ctx context.Context, id uuid.UUID, req room.UpdateRoomRequest) (*room.RoomResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) SetStatus(ctx context.Context, id uuid.UUID, req room.SetStatusRequest) (*room.RoomResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) SetAmenities(ctx context.Context, id uuid.UUID, req room.SetAmenitiesRequest) (*room.RoomResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRoomService) CreateImageUploadURL(ctx context.Context, id uuid.UUID, req room.ImageUploadRequest) (*media.UploadURL, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*media.UploadURL), args.Error(1)
}

func (m *mockRoomService) ConfirmImage(ctx context.Context, id uuid.UUID, req room.ConfirmImageRequest) (*room.RoomResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

func (m *mockRoomService) RemoveImage(ctx context.Context, id uuid.UUID) (*room.RoomResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*room.RoomResponse), args.Error(1)
}

type mockAvailabilityService struct{ mock.Mock }

func (m *mockAvailabilityService) Availability(ctx context.Context, roomID uuid.UUID, date string) (*booking.AvailabilityResponse, error) {
	args := m.Called(ctx, roomID, date)
	return args.Get(0).(*booking.AvailabilityResponse), args.Error(1)
}

type mockAmenityService struct{ mock.Mock }

func (m *mockAmenityService) Create(ctx context.Context, req room.CreateAmenityRequest) (*room.AmenityResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*room.AmenityResponse), args.Error(1)
}

func (m *mockAmenityService) Get(ctx context.Context, id uuid.UUID) (*room.AmenityResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*room.AmenityResponse), args.Error(1)
}

func (m *mockAmenityService) List(ctx context.Context, f room.AmenityListFilter) ([]room.AmenityResponse, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]room.AmenityResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockAmenityService) Update(ctx context.Context, id uuid.UUID, req room.UpdateAmenityRequest) (*room.AmenityResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*room.AmenityResponse), args.Error(1)
}

func (m *mockAmenityService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*identity.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*identity.ProfileResponse), args.Error(1)
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req identity.UpdateProfileRequest) (*identity.ProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(*identity.ProfileResponse), args.Error(1)
}

func (m *mockProfileService) CreateAvatarUploadURL(ctx context.Context, userID uuid.UUID, req identity.AvatarUploadRequest) (*media.UploadURL, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(*media.UploadURL), args.Error(1)
}

func (m *mockProfileService) ConfirmAvatar(ctx context.Context, userID uuid.UUID, req identity.ConfirmAvatarRequest) (*identity.ProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(*identity.ProfileResponse), args.Error(1)
}

func (m *mockProfileService) RemoveAvatar(ctx context.Context, userID uuid.UUID) (*identity.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*identity.ProfileResponse), args.Error(1)
}

type mockBookingService struct{ mock.Mock }

func (m *mockBookingService) Create(ctx context.Context, userID uuid.UUID, req booking.CreateBookingRequest) (*booking.BookingResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) GetForUser(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID) (*booking.BookingResponse, error) {
	args := m.Called(ctx, userID, admin, id)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) ListMine(ctx context.Context, userID uuid.UUID, f booking.MyBookingsFilter) ([]booking.BookingResponse, int64, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).([]booking.BookingResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingService) Update(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID, req booking.UpdateBookingRequest) (*booking.BookingResponse, error) {
	args := m.Called(ctx, userID, admin, id, req)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) Cancel(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID, req booking.CancelBookingRequest) (*booking.BookingResponse, error) {
	args := m.Called(ctx, userID, admin, id, req)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) List(ctx context.Context, f booking.AdminBookingFilter) ([]booking.BookingResponse, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]booking.BookingResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingService) Get(ctx context.Context, id uuid.UUID) (*booking.BookingResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) Confirm(ctx context.Context, adminID, id uuid.UUID) (*booking.BookingResponse, error) {
	args := m.Called(ctx, adminID, id)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) AdminCancel(ctx context.Context, adminID, id uuid.UUID, req booking.CancelBookingRequest) (*booking.BookingResponse, error) {
	args := m.Called(ctx, adminID, id, req)
	return args.Get(0).(*booking.BookingResponse), args.Error(1)
}

func (m *mockBookingService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	return m.Called(ctx, adminID, id).Error(0)
}

type mockSubscriptionService struct{ mock.Mock }

func (m *mockSubscriptionService) ListPlans() []billing.PlanResponse {
	return m.Called().Get(0).([]billing.PlanResponse)
}

func (m *mockSubscriptionService) GetMine(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*billing.SubscriptionResponse), args.Error(1)
}

func (m *mockSubscriptionService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req billing.CheckoutRequest) (*billing.CheckoutResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(*billing.CheckoutResponse), args.Error(1)
}

func (m *mockSubscriptionService) CreatePortalSession(ctx context.Context, userID uuid.UUID) (*billing.PortalResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*billing.PortalResponse), args.Error(1)
}

func (m *mockSubscriptionService) CancelAtPeriodEnd(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*billing.SubscriptionResponse), args.Error(1)
}

func (m *mockSubscriptionService) Resume(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*billing.SubscriptionResponse), args.Error(1)
}

func (m *mockSubscriptionService) List(ctx context.Context, f billing.SubscriptionListFilter) ([]billing.AdminSubscriptionResponse, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]billing.AdminSubscriptionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockSubscriptionService) Get(ctx context.Context, id uuid.UUID) (*billing.AdminSubscriptionResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*billing.AdminSubscriptionResponse), args.Error(1)
}

func (m *mockSubscriptionService) Override(ctx context.Context, adminID, id uuid.UUID, req billing.OverrideRequest) (*billing.AdminSubscriptionResponse, error) {
	args := m.Called(ctx, adminID, id, req)
	return args.Get(0).(*billing.AdminSubscriptionResponse), args.Error(1)
}

type mockWebhookProcessor struct{ mock.Mock }

func (m *mockWebhookProcessor) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*billing.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	return args.Get(0).(*billing.WebhookResult), args.Error(1)
}

type mockUserAdminService struct{ mock.Mock }

func (m *mockUserAdminService) List(ctx context.Context, f identity.UserListFilter) ([]identity.UserResponse, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]identity.UserResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserAdminService) Get(ctx context.Context, id uuid.UUID) (*identity.UserResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *mockUserAdminService) SetRole(ctx context.Context, actorID, id uuid.UUID, req identity.SetRoleRequest) (*identity.UserResponse, error) {
	args := m.Called(ctx, actorID, id, req)
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *mockUserAdminService) Suspend(ctx context.Context, actorID, id uuid.UUID, req identity.SuspendRequest) (*identity.UserResponse, error) {
	args := m.Called(ctx, actorID, id, req)
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *mockUserAdminService) Reactivate(ctx context.Context, actorID, id uuid.UUID) (*identity.UserResponse, error) {
	args := m.Called(ctx, actorID, id)
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *mockUserAdminService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	return m.Called(ctx, actorID, id).Error(0)
}

type mockDashboardService struct{ mock.Mock }

func (m *mockDashboardService) Overview(ctx context.Context) (*admin.OverviewResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(*admin.OverviewResponse), args.Error(1)
}
