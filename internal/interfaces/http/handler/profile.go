package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/identity"
	"github.com/roombook/backend/internal/application/media"
)

// ProfileService manages the caller's own profile
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*identity.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req identity.UpdateProfileRequest) (*identity.ProfileResponse, error)
	CreateAvatarUploadURL(ctx context.Context, userID uuid.UUID, req identity.AvatarUploadRequest) (*media.UploadURL, error)
	ConfirmAvatar(ctx context.Context, userID uuid.UUID, req identity.ConfirmAvatarRequest) (*identity.ProfileResponse, error)
	RemoveAvatar(ctx context.Context, userID uuid.UUID) (*identity.ProfileResponse, error)
}

// ProfileHandler serves /me
type ProfileHandler struct {
	BaseHandler
	profiles ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /me
// @Summary      Get my profile
// @Description  Retrieve the caller's profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /me
// @Summary      Update my profile
// @Description  Change the caller's name and phone number
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Profile update request"
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req identity.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.profiles.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AvatarUploadURL handles POST /me/avatar/upload-url
// @Summary      Request an avatar upload URL
// @Description  Get a presigned URL to upload a new avatar to
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body identity.AvatarUploadRequest true "File to upload"
// @Success      200 {object} dto.Response{data=media.UploadURL}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/avatar/upload-url [post]
func (h *ProfileHandler) AvatarUploadURL(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req identity.AvatarUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.profiles.CreateAvatarUploadURL(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmAvatar handles PUT /me/avatar
// @Summary      Set my avatar
// @Description  Reference an uploaded avatar from the profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body identity.ConfirmAvatarRequest true "Uploaded object"
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/avatar [put]
func (h *ProfileHandler) ConfirmAvatar(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req identity.ConfirmAvatarRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.profiles.ConfirmAvatar(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveAvatar handles DELETE /me/avatar
// @Summary      Remove my avatar
// @Description  Clear the caller's avatar
// @Tags         profile
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.ProfileResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/avatar [delete]
func (h *ProfileHandler) RemoveAvatar(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := h.profiles.RemoveAvatar(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
