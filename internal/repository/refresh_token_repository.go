package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshTokenRepository manages the persisted, revocable half of a session.
// The row is the allow-list: deleting it is the only revocation mechanism.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error
	// FindLive returns the owning user id for a token whose row exists with
	// expires_at still in the future; pgx.ErrNoRows otherwise. The expiry
	// filter runs server-side so lazily expired rows are indistinguishable
	// from revoked ones.
	FindLive(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository returns a Postgres-backed implementation.
func NewRefreshTokenRepository(pool *pgxpool.Pool) RefreshTokenRepository {
	return &refreshTokenRepository{pool: pool}
}

func (r *refreshTokenRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	const query = `
        INSERT INTO refresh_tokens (user_id, token, expires_at)
        VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	return err
}

func (r *refreshTokenRepository) FindLive(ctx context.Context, token string) (string, error) {
	const query = `
        SELECT user_id FROM refresh_tokens
        WHERE token=$1 AND expires_at > now()`

	var userID string
	if err := r.pool.QueryRow(ctx, query, token).Scan(&userID); err != nil {
		return "", err
	}
	return userID, nil
}

// Delete is idempotent: removing an unknown token is not an error.
func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token=$1`, token)
	return err
}

// DeleteExpired sweeps rows past their expiry. Validity never depends on this
// sweep; FindLive filters at read time.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
