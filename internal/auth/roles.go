package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/domain"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// Authorize checks a principal against a required role. Admin satisfies every
// role check; that single escalation rule lives here and nowhere else.
func Authorize(user *domain.User, required domain.Role) error {
	if user.Role == required || user.Role == domain.RoleAdmin {
		return nil
	}
	return apperrors.NewForbidden("insufficient permissions")
}

// RequireRole ensures the authenticated principal holds the required role.
// Must run after AuthMiddleware.Handle.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(user, required); err != nil {
			return err
		}
		return c.Next()
	}
}
