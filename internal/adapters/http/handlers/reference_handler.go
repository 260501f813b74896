package handlers

import (
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves the fixed vocabularies the forms are built from
type ReferenceHandler struct{}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// GetReference returns blood types, components, locations, statuses and thresholds
// @Summary Reference data
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reference [get]
func (h *ReferenceHandler) GetReference(c *fiber.Ctx) error {
	return response.Success(c, "Reference data retrieved successfully", fiber.Map{
		"blood_types": domain.BloodTypes,
		"components":  domain.Components,
		"locations": []string{
			domain.LocationMainStorage,
			domain.LocationColdStorage1,
			domain.LocationColdStorage2,
			domain.LocationMobileUnit,
		},
		"lot_statuses":     []domain.LotStatus{domain.LotAvailable, domain.LotReserved, domain.LotDepleted},
		"request_statuses": []domain.RequestStatus{domain.RequestPending, domain.RequestApproved, domain.RequestRejected, domain.RequestCompleted},
		"urgencies":        []domain.Urgency{domain.UrgencyNormal, domain.UrgencyUrgent, domain.UrgencyCritical},
		"thresholds": fiber.Map{
			"shelf_life_days":          stock.ShelfLifeDays,
			"near_expiry_days":         stock.NearExpiryDays,
			"critical_stock_threshold": stock.CriticalStockThreshold,
			"low_lot_units_threshold":  stock.LowLotUnitsThreshold,
		},
	})
}
