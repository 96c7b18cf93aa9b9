package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/http/handlers"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	app.Get("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Auth.ListUsers)

	files := app.Group("/api/files", cfg.AuthMiddleware.Handle)
	files.Post("/upload", cfg.Reports.Upload)
	files.Post("/upload-text", cfg.Reports.UploadText)
	files.Get("/reports", cfg.Reports.List)
	files.Get("/reports/:id", cfg.Reports.Get)
	files.Delete("/reports/:id", cfg.Reports.Delete)
}
