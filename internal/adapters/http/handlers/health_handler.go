package handlers

import (
	"context"
	"time"

	"bloodbank-api/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything whose reachability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg   *config.Config
	store Pinger
	cache Pinger // nil when Redis is not configured
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, store Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{
		cfg:   cfg,
		store: store,
		cache: cache,
	}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🩸 Blood Bank API v1.0 is running",
		"mode":    h.cfg.AppMode,
		"storage": h.cfg.Storage,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, store and cache health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := fiber.Map{"api": "healthy"}

	// Check store
	checks["store"] = "healthy"
	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	// Check cache; a missing cache only degrades stats
	if h.cache == nil {
		checks["cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		checks["cache"] = "unhealthy"
	} else {
		checks["cache"] = "healthy"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Blood Bank API v1.0",
		"version": "1.0.0",
	})
}
