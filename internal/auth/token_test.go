package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_AccessToken_Roundtrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute, time.Hour)

	token, expiresAt, err := tm.GenerateAccessToken("alice@example.com")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
}

func TestTokenManager_RefreshToken_Roundtrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute, time.Hour)

	token, expiresAt, err := tm.GenerateRefreshToken("alice@example.com")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", -time.Second, -time.Second)

	token, _, err := tm.GenerateAccessToken("alice@example.com")
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Minute, time.Hour)
	verifier := NewTokenManager("secret-b", time.Minute, time.Hour)

	token, _, err := issuer.GenerateAccessToken("alice@example.com")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.NotErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_MalformedToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute, time.Hour)

	_, err := tm.ParseToken("not-a-jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
