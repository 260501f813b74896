package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("u-1", "nurse@example.com", "hospital", "secret", 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "nurse@example.com", claims.Email)
	assert.Equal(t, "hospital", claims.Role)
	assert.Equal(t, "bloodbank-api", claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("u-1", "a@b.c", "admin", "secret", 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("u-1", "a@b.c", "admin", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("u-2", "tok-9", "refresh", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "u-2", claims.UserID)
	assert.Equal(t, "tok-9", claims.TokenID)

	_, err = ValidateAccessToken(token, "secret")
	assert.Error(t, err)
}
