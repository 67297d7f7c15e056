package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TokenRevoker invalidates every token issued to a user before now
type TokenRevoker interface {
	AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error
}

// Guard errors of the back-office user operations
var (
	ErrSelfAction = shared.NewDomainError("SELF_ACTION", "Admins cannot do this to their own account")
	ErrLastAdmin  = shared.NewDomainError("LAST_ADMIN", "At least one admin must remain")
)

// UserAdminService is the back-office view of profiles
type UserAdminService struct {
	profiles      identity.ProfileRepository
	subscriptions billing.SubscriptionRepository
	revoker       TokenRevoker
	tokenTTL      time.Duration
	uploader      *media.Uploader
	events        *appevent.Dispatcher
	logger        *zap.Logger
}

// NewUserAdminService creates a new UserAdminService. tokenTTL is the longest
// lifetime of a provider token; revocations are kept that long.
func NewUserAdminService(
	profiles identity.ProfileRepository,
	subscriptions billing.SubscriptionRepository,
	revoker TokenRevoker,
	tokenTTL time.Duration,
	uploader *media.Uploader,
	events *appevent.Dispatcher,
	logger *zap.Logger,
) *UserAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserAdminService{
		profiles:      profiles,
		subscriptions: subscriptions,
		revoker:       revoker,
		tokenTTL:      tokenTTL,
		uploader:      uploader,
		events:        events,
		logger:        logger,
	}
}

// List returns a page of profiles
func (s *UserAdminService) List(ctx context.Context, f UserListFilter) ([]UserResponse, int64, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	if f.Role != "" {
		filter = filter.With("role", identity.Role(f.Role))
	}
	if f.Status != "" {
		filter = filter.With("status", identity.ProfileStatus(f.Status))
	}

	profiles, total, err := s.profiles.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toUserResponse(&profiles[i], s.uploader.DownloadURL(ctx, profiles[i].AvatarKey), nil))
	}
	return out, total, nil
}

// Get returns one profile with its subscription summary
func (s *UserAdminService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sub, err := s.subscriptions.FindByUserID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := toUserResponse(profile, s.uploader.DownloadURL(ctx, profile.AvatarKey), sub)
	return &resp, nil
}

// SetRole promotes or demotes a profile. Admins cannot demote themselves and
// the last admin cannot be demoted.
func (s *UserAdminService) SetRole(ctx context.Context, actorID, id uuid.UUID, req SetRoleRequest) (*UserResponse, error) {
	role := identity.Role(req.Role)
	if actorID == id && role != identity.RoleAdmin {
		return nil, ErrSelfAction
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.IsAdmin() && role == identity.RoleUser {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := profile.SetRole(role); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, profile)

	s.logger.Info("Profile role changed",
		zap.String("actor_id", actorID.String()),
		zap.String("profile_id", id.String()),
		zap.String("role", string(role)),
	)
	return s.Get(ctx, id)
}

// Suspend blocks a profile and revokes the tokens it holds
func (s *UserAdminService) Suspend(ctx context.Context, actorID, id uuid.UUID, req SuspendRequest) (*UserResponse, error) {
	if actorID == id {
		return nil, ErrSelfAction
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := profile.Suspend(req.Reason); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, profile)
	s.revokeTokens(ctx, id)

	s.logger.Info("Profile suspended",
		zap.String("actor_id", actorID.String()),
		zap.String("profile_id", id.String()),
	)
	return s.Get(ctx, id)
}

// Reactivate lifts a suspension. Tokens revoked at suspension stay revoked;
// the user signs in again.
func (s *UserAdminService) Reactivate(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := profile.Reactivate(); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, profile)

	s.logger.Info("Profile reactivated",
		zap.String("actor_id", actorID.String()),
		zap.String("profile_id", id.String()),
	)
	return s.Get(ctx, id)
}

// Delete removes a profile with its subscription. Bookings go with it through
// the foreign key.
func (s *UserAdminService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrSelfAction
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if profile.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)
	s.uploader.Remove(ctx, profile.AvatarKey)

	s.logger.Info("Profile deleted",
		zap.String("actor_id", actorID.String()),
		zap.String("profile_id", id.String()),
	)
	return nil
}

func (s *UserAdminService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.profiles.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// revokeTokens is best effort: suspended profiles are also refused by the
// access check on every request
func (s *UserAdminService) revokeTokens(ctx context.Context, id uuid.UUID) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.AddUserTokensToBlacklist(ctx, id.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens",
			zap.String("profile_id", id.String()),
			zap.Error(err),
		)
	}
}
