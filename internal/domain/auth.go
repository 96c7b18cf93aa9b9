package domain

import "time"

// TokenPair carries the two credentials issued at login. The access token is
// stateless and never persisted; the refresh token has a matching row in the
// refresh_tokens table for as long as it is revocable.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken is the persisted, revocable half of a session. Deleting the
// row is the only revocation mechanism; a token is live iff its row exists
// with ExpiresAt in the future.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
