package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/repository"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads the principal for the
// remainder of request handling.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate resolves a bearer token string to its user. Token failures of
// any kind surface as UNAUTHORIZED; an inactive account is its own failure
// class because the caller did authenticate.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("could not validate credentials")
	}

	user, err := m.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("could not validate credentials")
		}
		return nil, apperrors.MapError(err)
	}

	if !user.IsActive {
		return nil, apperrors.NewInactiveAccount()
	}
	return user, nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	user, err := m.Authenticate(c.UserContext(), parts[1])
	if err != nil {
		return err
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
