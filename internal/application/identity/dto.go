package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/identity"
)

// ProfileResponse is the profile as shown to its owner
type ProfileResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone,omitempty"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserResponse is a profile as shown in the back-office
type UserResponse struct {
	ProfileResponse
	SuspendReason      string     `json:"suspend_reason,omitempty"`
	SuspendedAt        *time.Time `json:"suspended_at,omitempty"`
	Plan               string     `json:"plan,omitempty"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
}

// AccessState is what the HTTP layer needs to authorize a request
type AccessState struct {
	UserID  uuid.UUID
	Email   string
	Role    identity.Role
	Status  identity.ProfileStatus
	IsAdmin bool
}

// Allowed reports whether the profile may use the application at all
func (a AccessState) Allowed() bool {
	return a.Status == identity.ProfileStatusActive
}

// UpdateProfileRequest is the payload of PUT /me
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"max=100"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

// AvatarUploadRequest declares the file the client is about to upload
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// ConfirmAvatarRequest references an uploaded object
type ConfirmAvatarRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

// UserListFilter holds back-office user list parameters
type UserListFilter struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Role     string `form:"role" binding:"omitempty,oneof=user admin"`
	Status   string `form:"status" binding:"omitempty,oneof=active suspended"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at email full_name last_seen_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SetRoleRequest changes a user's role
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// SuspendRequest suspends a user
type SuspendRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func toProfileResponse(p *identity.Profile, avatarURL string) ProfileResponse {
	return ProfileResponse{
		ID:         p.ID,
		Email:      p.Email,
		FullName:   p.FullName,
		Phone:      p.Phone,
		AvatarURL:  avatarURL,
		Role:       string(p.Role),
		Status:     string(p.Status),
		LastSeenAt: p.LastSeenAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toUserResponse(p *identity.Profile, avatarURL string, sub *billing.Subscription) UserResponse {
	resp := UserResponse{
		ProfileResponse: toProfileResponse(p, avatarURL),
		SuspendReason:   p.SuspendReason,
		SuspendedAt:     p.SuspendedAt,
	}
	if sub != nil {
		resp.Plan = string(sub.Plan)
		resp.SubscriptionStatus = string(sub.Status)
	}
	return resp
}

func toAccessState(p *identity.Profile) *AccessState {
	return &AccessState{
		UserID:  p.ID,
		Email:   p.Email,
		Role:    p.Role,
		Status:  p.Status,
		IsAdmin: p.IsAdmin(),
	}
}
