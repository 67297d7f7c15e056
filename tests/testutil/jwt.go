package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Defaults shared by handler and middleware tests that sign their own tokens
const (
	TestJWTSecret   = "test-secret-key-at-least-32-chars"
	TestJWTIssuer   = "https://auth.roombook.test"
	TestJWTAudience = "authenticated"
)

type providerClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// TokenOption adjusts the claims of a test token
type TokenOption func(*providerClaims)

// WithTokenTimes sets issued-at and expiry
func WithTokenTimes(issuedAt, expiresAt time.Time) TokenOption {
	return func(c *providerClaims) {
		c.IssuedAt = jwt.NewNumericDate(issuedAt)
		c.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
}

// WithTokenID sets the jti claim
func WithTokenID(jti string) TokenOption {
	return func(c *providerClaims) { c.ID = jti }
}

// WithIssuer overrides the issuer
func WithIssuer(iss string) TokenOption {
	return func(c *providerClaims) { c.Issuer = iss }
}

// AccessToken signs an HS256 access token shaped like the auth provider's,
// valid for an hour from now
func AccessToken(t testing.TB, subject uuid.UUID, email string, opts ...TokenOption) string {
	t.Helper()
	now := time.Now()
	claims := &providerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.String(),
			Issuer:    TestJWTIssuer,
			Audience:  jwt.ClaimStrings{TestJWTAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: email,
		Role:  "authenticated",
	}
	for _, opt := range opts {
		opt(claims)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	require.NoError(t, err)
	return token
}
