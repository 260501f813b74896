package handlers

import (
	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the dashboard for the caller's role
// @Summary Dashboard
// @Description Staff get inventory stats, donor and request counts and recent transactions; donors get their record and stock levels
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	_, email, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.ForUser(c.Context(), role, email)
	if err != nil {
		return respondError(c, err, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
