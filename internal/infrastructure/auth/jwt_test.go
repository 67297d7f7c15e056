package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/roombook/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier(config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "https://auth.example.com",
		Audience:  "authenticated",
		Leeway:    30 * time.Second,
	})
}

func newTestClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   uuid.NewString(),
			Issuer:    "https://auth.example.com",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "ada@example.com",
		Role:  "authenticated",
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestTokenVerifier_Verify(t *testing.T) {
	v := newTestVerifier()

	t.Run("accepts valid token", func(t *testing.T) {
		claims := newTestClaims()
		got, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims))

		require.NoError(t, err)
		assert.Equal(t, claims.Subject, got.Subject)
		assert.Equal(t, "ada@example.com", got.Email)

		id, err := got.SubjectUUID()
		require.NoError(t, err)
		assert.Equal(t, claims.Subject, id.String())
	})

	tests := []struct {
		name    string
		mutate  func(c *Claims)
		secret  string
		wantErr error
	}{
		{
			name:    "wrong secret",
			mutate:  func(c *Claims) {},
			secret:  "another-secret-key-at-least-32-chars",
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			mutate: func(c *Claims) {
				c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			},
			wantErr: ErrExpiredToken,
		},
		{
			name:    "missing expiry",
			mutate:  func(c *Claims) { c.ExpiresAt = nil },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "not yet valid",
			mutate:  func(c *Claims) { c.NotBefore = jwt.NewNumericDate(time.Now().Add(10 * time.Minute)) },
			wantErr: ErrTokenNotYetValid,
		},
		{
			name:    "wrong issuer",
			mutate:  func(c *Claims) { c.Issuer = "https://evil.example.com" },
			wantErr: ErrInvalidIssuer,
		},
		{
			name:    "wrong audience",
			mutate:  func(c *Claims) { c.Audience = jwt.ClaimStrings{"anon"} },
			wantErr: ErrInvalidAudience,
		},
		{
			name:    "subject is not a uuid",
			mutate:  func(c *Claims) { c.Subject = "user-42" },
			wantErr: ErrMissingSubject,
		},
		{
			name:    "missing email",
			mutate:  func(c *Claims) { c.Email = " " },
			wantErr: ErrMissingEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := newTestClaims()
			tt.mutate(claims)
			secret := testSecret
			if tt.secret != "" {
				secret = tt.secret
			}

			_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(secret), claims))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v := newTestVerifier()

	token := sign(t, jwt.SigningMethodHS512, []byte(testSecret), newTestClaims())
	_, err := v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, newTestClaims())
	_, err = v.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifier_Leeway(t *testing.T) {
	v := newTestVerifier()

	claims := newTestClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))

	_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
	assert.NoError(t, err, "expiry inside the leeway is tolerated")
}

func TestTokenVerifier_OptionalIssuerAndAudience(t *testing.T) {
	v := NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret})

	claims := newTestClaims()
	claims.Issuer = "anything"
	claims.Audience = nil

	_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
	assert.NoError(t, err)
}

func TestClaims_Times(t *testing.T) {
	claims := newTestClaims()

	assert.False(t, claims.GetIssuedAtTime().IsZero())
	assert.False(t, claims.GetExpiresAtTime().IsZero())
	assert.InDelta(t, time.Hour.Seconds(), claims.GetRemainingTTL().Seconds(), 5)

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, claims.GetRemainingTTL())

	claims.ExpiresAt = nil
	claims.IssuedAt = nil
	assert.Zero(t, claims.GetRemainingTTL())
	assert.True(t, claims.GetIssuedAtTime().IsZero())
}
