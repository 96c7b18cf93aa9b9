package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Token verification failure kinds. Both map to an unauthenticated response
// at the boundary but stay distinguishable for diagnostics.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenManager signs and verifies HS256 tokens with a single shared secret.
// Access and refresh tokens differ only in validity window; the refresh
// token's revocability comes from its persisted row, not the codec.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL == 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims describes the JWT payload: subject is the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a short-lived access token for the subject email.
func (tm *TokenManager) GenerateAccessToken(email string) (string, time.Time, error) {
	return tm.generate(email, tm.accessTTL)
}

// GenerateRefreshToken signs a long-lived refresh token for the subject email.
func (tm *TokenManager) GenerateRefreshToken(email string) (string, time.Time, error) {
	return tm.generate(email, tm.refreshTTL)
}

func (tm *TokenManager) generate(email string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns the claims.
// Expired tokens fail with ErrTokenExpired; anything else with ErrTokenInvalid.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
