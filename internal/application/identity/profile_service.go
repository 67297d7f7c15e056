package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// lastSeenResolution limits how often last_seen_at is written for the same profile
const lastSeenResolution = 5 * time.Minute

// ProfileService provisions and maintains the profile of the authenticated user
type ProfileService struct {
	profiles      identity.ProfileRepository
	subscriptions billing.SubscriptionRepository
	uploader      *media.Uploader
	events        *appevent.Dispatcher
	adminEmails   map[string]struct{}
	logger        *zap.Logger
	now           func() time.Time
}

// NewProfileService creates a new ProfileService. Profiles whose email is in
// adminEmails are promoted to admin when they are first provisioned.
func NewProfileService(
	profiles identity.ProfileRepository,
	subscriptions billing.SubscriptionRepository,
	uploader *media.Uploader,
	events *appevent.Dispatcher,
	adminEmails []string,
	logger *zap.Logger,
) *ProfileService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		profiles:      profiles,
		subscriptions: subscriptions,
		uploader:      uploader,
		events:        events,
		adminEmails:   admins,
		logger:        logger,
		now:           time.Now,
	}
}

// EnsureProfile returns the access state of subject, provisioning the profile
// and its free subscription the first time the subject is seen.
func (s *ProfileService) EnsureProfile(ctx context.Context, subject uuid.UUID, email string) (*AccessState, error) {
	profile, err := s.profiles.FindByID(ctx, subject)
	switch {
	case err == nil:
		s.refresh(ctx, profile, email)
		return toAccessState(profile), nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	profile, err = s.provision(ctx, subject, email)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSubscription(ctx, profile.ID); err != nil {
		return nil, err
	}
	return toAccessState(profile), nil
}

func (s *ProfileService) provision(ctx context.Context, subject uuid.UUID, email string) (*identity.Profile, error) {
	profile, err := identity.NewProfile(subject, email)
	if err != nil {
		return nil, err
	}
	if _, ok := s.adminEmails[profile.Email]; ok {
		if err := profile.PromoteToAdmin(); err != nil {
			return nil, err
		}
	}
	profile.Touch(s.now())

	if err := s.profiles.Save(ctx, profile); err != nil {
		// A concurrent request for the same subject may have won the insert
		existing, findErr := s.profiles.FindByID(ctx, subject)
		if findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.logger.Info("Profile provisioned",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", string(profile.Role)),
	)
	s.events.Dispatch(ctx, profile)
	return profile, nil
}

func (s *ProfileService) ensureSubscription(ctx context.Context, userID uuid.UUID) error {
	_, err := s.subscriptions.FindByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	sub, err := billing.NewFreeSubscription(userID)
	if err != nil {
		return err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
		return err
	}
	return nil
}

// refresh keeps email and last-seen in step with the identity provider.
// Failures only cost freshness, so they are logged.
func (s *ProfileService) refresh(ctx context.Context, profile *identity.Profile, email string) {
	now := s.now()
	if email != "" && !strings.EqualFold(strings.TrimSpace(email), profile.Email) {
		if err := profile.ChangeEmail(email); err == nil {
			profile.Touch(now)
			if err := s.profiles.Save(ctx, profile); err != nil {
				s.logger.Warn("Failed to sync profile email",
					zap.String("profile_id", profile.ID.String()), zap.Error(err))
			}
			return
		}
	}
	if profile.LastSeenAt != nil && now.Sub(*profile.LastSeenAt) < lastSeenResolution {
		return
	}
	profile.Touch(now)
	if err := s.profiles.TouchLastSeen(ctx, profile.ID); err != nil {
		s.logger.Warn("Failed to record last seen",
			zap.String("profile_id", profile.ID.String()), zap.Error(err))
	}
}

// GetAccessState returns role and status of an existing profile
func (s *ProfileService) GetAccessState(ctx context.Context, userID uuid.UUID) (*AccessState, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAccessState(profile), nil
}

// GetProfile returns the caller's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toProfileResponse(profile, s.uploader.DownloadURL(ctx, profile.AvatarKey))
	return &resp, nil
}

// UpdateProfile changes name and phone
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := profile.UpdateDetails(req.FullName, req.Phone); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	resp := toProfileResponse(profile, s.uploader.DownloadURL(ctx, profile.AvatarKey))
	return &resp, nil
}

// CreateAvatarUploadURL returns a presigned URL for a new avatar image
func (s *ProfileService) CreateAvatarUploadURL(ctx context.Context, userID uuid.UUID, req AvatarUploadRequest) (*media.UploadURL, error) {
	return s.uploader.CreateImageUpload(ctx, media.PrefixAvatars, userID, req.ContentType, req.Size)
}

// ConfirmAvatar points the profile at an uploaded avatar and removes the previous one
func (s *ProfileService) ConfirmAvatar(ctx context.Context, userID uuid.UUID, req ConfirmAvatarRequest) (*ProfileResponse, error) {
	if err := s.uploader.Confirm(ctx, media.PrefixAvatars, userID, req.StorageKey); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := profile.AvatarKey
	if err := profile.SetAvatar(req.StorageKey); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	if previous != req.StorageKey {
		s.uploader.Remove(ctx, previous)
	}
	resp := toProfileResponse(profile, s.uploader.DownloadURL(ctx, profile.AvatarKey))
	return &resp, nil
}

// RemoveAvatar clears the avatar and deletes its object
func (s *ProfileService) RemoveAvatar(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := profile.AvatarKey
	if previous != "" {
		profile.ClearAvatar()
		if err := s.profiles.Save(ctx, profile); err != nil {
			return nil, err
		}
		s.uploader.Remove(ctx, previous)
	}
	resp := toProfileResponse(profile, "")
	return &resp, nil
}
