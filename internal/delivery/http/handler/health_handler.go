package handler

import (
	"context"
	"time"

	"devhub/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and readiness. The database is required for
// readiness; the cache is reported but optional.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Live)
	r.Get("/health/ready", h.Ready)
}

func (h *HealthHandler) Live(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"status": "up"})
}

func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := fiber.Map{"database": "up", "cache": "up"}

	if h.db == nil || h.db.Ping(ctx) != nil {
		status = fiber.StatusServiceUnavailable
		checks["database"] = "down"
	}
	if h.cache == nil || h.cache.Ping(ctx) != nil {
		checks["cache"] = "unavailable"
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, response.MessageServiceUnavailable, checks)
	}
	return response.Success(c, status, response.MessageOK, checks)
}
