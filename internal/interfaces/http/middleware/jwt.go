package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/infrastructure/auth"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys written by the authentication middleware
const (
	JWTClaimsKey  = "jwt_claims"
	ProfileIDKey  = "profile_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier validates provider access tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Verifier is required for token validation
	Verifier TokenVerifier
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	Logger         *zap.Logger
}

// JWTAuthMiddleware authenticates requests with a bearer token issued by the
// auth provider. On success the claims and the subject (the profile ID) are
// stored on the gin context and the profile ID on the request context.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortAuth(c, log, nil, "Missing authorization header")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, BearerPrefix)
		if !ok || strings.TrimSpace(tokenString) == "" {
			abortAuth(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Verifier.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			abortAuth(c, log, err, "Token validation failed")
			return
		}
		profileID, err := claims.SubjectUUID()
		if err != nil {
			abortAuth(c, log, auth.ErrMissingSubject, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil && revoked(c, log, cfg.TokenBlacklist, claims) {
			abortAuth(c, log, auth.ErrTokenBlacklisted, "Token has been revoked")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(ProfileIDKey, profileID)

		ctx := logger.WithProfileID(c.Request.Context(), profileID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// revoked checks the individual token and the user-wide invalidation marker.
// Blacklist lookups fail open so a Redis outage does not lock everyone out.
func revoked(c *gin.Context, log *zap.Logger, blacklist auth.TokenBlacklist, claims *auth.Claims) bool {
	ctx := c.Request.Context()
	if claims.ID != "" {
		blacklisted, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		} else if blacklisted {
			return true
		}
	}
	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, claims.Subject, claims.GetIssuedAtTime())
	if err != nil {
		log.Error("Failed to check user token invalidation", zap.String("profile_id", claims.Subject), zap.Error(err))
		return false
	}
	return invalidated
}

func abortAuth(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	default:
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	abortWithError(c, http.StatusUnauthorized, code, msg)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetProfileID returns the authenticated profile ID
func GetProfileID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(ProfileIDKey); exists {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
