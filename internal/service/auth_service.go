package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/config"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/repository"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// AuthService coordinates registration and the session lifecycle: login
// issues an access/refresh pair, refresh mints new access tokens against the
// persisted refresh row, logout revokes by deleting that row.
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.RefreshTokenRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL()),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new account. New users start active, unverified, with
// the "user" role. The plaintext password is hashed immediately and never
// stored or logged.
func (s *AuthService) Register(ctx context.Context, email, username, password, fullName string) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
		IsVerified:   false,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login authenticates by email and password and issues a token pair. Unknown
// email and wrong password collapse into one failure so callers cannot
// enumerate accounts; an inactive account is reported separately because the
// credentials were correct.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	if !user.IsActive {
		return nil, apperrors.NewInactiveAccount()
	}

	accessToken, _, err := s.tokenMgr.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, expiresAt, err := s.tokenMgr.GenerateRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}

	// The refresh row is the durable side effect; the access token stays
	// stateless and is never persisted.
	if err := s.tokens.Create(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh verifies a refresh token and issues a new access token. The live
// row check is mandatory even after signature and expiry passed: a token can
// be cryptographically valid yet revoked, and the row is the allow-list.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken)
	if err != nil {
		return "", apperrors.NewInvalidToken()
	}

	if _, err := s.tokens.FindLive(ctx, refreshToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewExpiredOrRevoked()
		}
		return "", err
	}

	// Re-resolve the subject: the account may have been deleted since the
	// token was issued.
	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewUserNotFound()
		}
		return "", err
	}

	accessToken, _, err := s.tokenMgr.GenerateAccessToken(user.Email)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

// Logout revokes a refresh token by deleting its row. Deleting a token that
// never existed or is already gone succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Delete(ctx, refreshToken)
}

// ListUsers returns every account for the admin surface.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// SweepExpiredTokens removes refresh rows past their expiry. Best effort:
// token validity never depends on it.
func (s *AuthService) SweepExpiredTokens(ctx context.Context) {
	removed, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.logger.Warn("refresh token sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("swept expired refresh tokens", zap.Int64("removed", removed))
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
