package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Ready reports dependency readiness. Redis is optional; only the database
// gates readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := http.StatusOK

	if h.pg == nil || h.pg.PoolHandle() == nil {
		checks["postgres"] = "not configured"
		status = http.StatusServiceUnavailable
	} else if err := h.pg.PoolHandle().Ping(c.UserContext()); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := h.redis.Ping(c.UserContext()); err != nil {
		checks["redis"] = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"status": checks})
}
