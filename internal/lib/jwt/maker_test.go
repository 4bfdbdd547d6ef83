package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func TestMaker_IssueAndVerify_ValidCases(t *testing.T) {
	maker := NewJWTMaker(testSecret, DefaultTTL)

	tests := []struct {
		name   string
		userID string
		email  string
	}{
		{name: "regular user", userID: "65f0c1a2b3c4d5e6f7a8b9c0", email: "a@b.com"},
		{name: "admin user", userID: "65f0c1a2b3c4d5e6f7a8b9c1", email: "admin@documind.ai"},
		{name: "email with plus", userID: "65f0c1a2b3c4d5e6f7a8b9c2", email: "user+tag@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.Issue(tt.userID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_ZeroTTLUsesDefault(t *testing.T) {
	maker := NewJWTMaker(testSecret, 0)
	assert.Equal(t, DefaultTTL, maker.tokenTTL)
}

func TestMaker_ValidUntilExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	maker := NewJWTMaker(testSecret, DefaultTTL)
	maker.now = func() time.Time { return issuedAt }

	token, err := maker.Issue("65f0c1a2b3c4d5e6f7a8b9c0", "a@b.com")
	require.NoError(t, err)

	maker.now = func() time.Time { return issuedAt.Add(23*time.Hour + 59*time.Minute) }
	claims, err := maker.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)

	maker.now = func() time.Time { return issuedAt.Add(24*time.Hour + time.Minute) }
	claims, err = maker.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestMaker_Verify_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, DefaultTTL)

	validToken, err := maker.Issue("65f0c1a2b3c4d5e6f7a8b9c0", "a@b.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "none algorithm", token: createUnsignedToken(t)},
		{name: "missing expiry", token: createTokenWithoutExpiry(t)},
		{name: "missing user id", token: createTokenWithoutUserID(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", DefaultTTL)
	maker2 := NewJWTMaker("different_secret_key", DefaultTTL)

	token, err := maker1.Issue("65f0c1a2b3c4d5e6f7a8b9c0", "a@b.com")
	require.NoError(t, err)

	_, err = maker2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = maker1.Verify(token)
	assert.NoError(t, err)
}

func createExpiredToken(t *testing.T) string {
	maker := NewJWTMaker(testSecret, -time.Hour)
	token, err := maker.Issue("65f0c1a2b3c4d5e6f7a8b9c0", "a@b.com")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	token, err := NewJWTMaker("wrong_secret_key", DefaultTTL).Issue("65f0c1a2b3c4d5e6f7a8b9c0", "a@b.com")
	require.NoError(t, err)
	return token
}

func createUnsignedToken(t *testing.T) string {
	claims := Claims{
		UserID: "65f0c1a2b3c4d5e6f7a8b9c0",
		Email:  "a@b.com",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func createTokenWithoutExpiry(t *testing.T) string {
	claims := Claims{UserID: "65f0c1a2b3c4d5e6f7a8b9c0", Email: "a@b.com"}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func createTokenWithoutUserID(t *testing.T) string {
	claims := Claims{
		Email: "a@b.com",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
