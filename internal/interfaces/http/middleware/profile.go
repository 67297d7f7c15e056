package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/roombook/backend/internal/application/identity"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AccessStateKey holds the caller's *identity.AccessState
const AccessStateKey = "access_state"

// ProfileProvisioner returns the access state of a subject, creating its
// profile on first sight
type ProfileProvisioner interface {
	EnsureProfile(ctx context.Context, subject uuid.UUID, email string) (*appidentity.AccessState, error)
}

// ProvisionProfile runs after JWTAuthMiddleware. It makes sure the caller has
// a profile and refuses suspended accounts.
func ProvisionProfile(provisioner ProfileProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		profileID, ok := GetProfileID(c)
		if claims == nil || !ok {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		state, err := provisioner.EnsureProfile(c.Request.Context(), profileID, claims.Email)
		if err != nil {
			logger.GetGinLogger(c).Error("Failed to load profile",
				zap.String("profile_id", profileID.String()), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to load profile")
			return
		}
		if !state.Allowed() {
			abortWithError(c, http.StatusForbidden, "ACCOUNT_SUSPENDED", "Account is suspended")
			return
		}

		c.Set(AccessStateKey, state)
		c.Next()
	}
}

// AdminOnly lets only administrators through
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := GetAccessState(c)
		if state == nil || !state.IsAdmin {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Administrator access required")
			return
		}
		c.Next()
	}
}

// GetAccessState returns the state stored by ProvisionProfile
func GetAccessState(c *gin.Context) *appidentity.AccessState {
	if v, exists := c.Get(AccessStateKey); exists {
		if state, ok := v.(*appidentity.AccessState); ok {
			return state
		}
	}
	return nil
}

// IsAdmin reports whether the caller is an administrator
func IsAdmin(c *gin.Context) bool {
	state := GetAccessState(c)
	return state != nil && state.IsAdmin
}
