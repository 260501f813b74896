package handlers

import (
	"fmt"
	"net/url"
	"time"

	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/pkg/pagination"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler handles blood lot and transaction endpoints
type InventoryHandler struct {
	inventoryService *services.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// ListLots lists active lots, most recent first
// @Summary List inventory
// @Description Lots with days until expiry and near-expiry / low-unit flags. Depleted lots only appear with status=depleted.
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blood_type query string false "Blood type"
// @Param status query string false "available, reserved or depleted"
// @Param location query string false "Storage location"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	params := pagination.GetParamsFor(c, pagination.Inventory)

	lots, total, err := h.inventoryService.List(c.Context(), &services.ListLotsInput{
		BloodType: c.Query("blood_type"),
		Status:    c.Query("status"),
		Location:  c.Query("location"),
		Offset:    params.Offset,
		Limit:     params.Limit,
	})
	if err != nil {
		return respondError(c, err, "Failed to list inventory")
	}

	return response.Success(c, "Inventory retrieved successfully", pagination.NewResponse(lots, params, total))
}

// ListByBloodType lists lots of one type, soonest expiry first
// @Summary List lots by blood type
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type (URL-encode the sign, e.g. A%2B)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/types/{bloodType} [get]
func (h *InventoryHandler) ListByBloodType(c *fiber.Ctx) error {
	bloodType, err := url.PathUnescape(c.Params("bloodType"))
	if err != nil {
		return response.BadRequest(c, "Invalid blood type")
	}

	lots, err := h.inventoryService.ListByBloodType(c.Context(), bloodType)
	if err != nil {
		return respondError(c, err, "Failed to list inventory")
	}

	return response.Success(c, "Inventory retrieved successfully", fiber.Map{
		"lots": lots,
	})
}

// Intake records a newly received lot
// @Summary Add blood lot
// @Description Store a new lot and log an incoming transaction. Expiry defaults to donation date + 42 days.
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.IntakeInput true "Lot data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory [post]
func (h *InventoryHandler) Intake(c *fiber.Ctx) error {
	var req services.IntakeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.inventoryService.Intake(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to add lot")
	}

	return response.Created(c, "Lot added successfully", result)
}

// Allocate dispatches units of one blood type
// @Summary Dispatch units
// @Description Deplete available lots in list order. Fails with 409 and the available quantity when stock is short.
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AllocateInput true "Dispatch data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /inventory/allocate [post]
func (h *InventoryHandler) Allocate(c *fiber.Ctx) error {
	var req services.AllocateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.inventoryService.Allocate(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to dispatch units")
	}

	return response.Success(c, "Units dispatched successfully", result)
}

// GetLot gets one lot
// @Summary Get lot
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/{id} [get]
func (h *InventoryHandler) GetLot(c *fiber.Ctx) error {
	lot, err := h.inventoryService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to get lot")
	}

	return response.Success(c, "Lot retrieved successfully", fiber.Map{
		"lot": lot,
	})
}

// UpdateLot edits status or location
// @Summary Update lot
// @Description Reserve, release or move a lot. Depleted lots cannot be edited.
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Param body body services.UpdateLotInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /inventory/{id} [patch]
func (h *InventoryHandler) UpdateLot(c *fiber.Ctx) error {
	var req services.UpdateLotInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lot, err := h.inventoryService.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "Failed to update lot")
	}

	return response.Success(c, "Lot updated successfully", fiber.Map{
		"lot": lot,
	})
}

// Stats returns totals over available lots
// @Summary Inventory stats
// @Description Total units, critical blood types, units expiring within 7 days and the per-type distribution
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.inventoryService.Stats(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to compute stats")
	}

	return response.Success(c, "Stats retrieved successfully", stats)
}

// ListTransactions lists the transaction log
// @Summary List transactions
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type query string false "incoming or outgoing"
// @Param blood_type query string false "Blood type"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	params := pagination.GetParamsFor(c, pagination.Inventory)

	txs, total, err := h.inventoryService.Transactions(c.Context(), &services.ListTransactionsInput{
		Type:      c.Query("type"),
		BloodType: c.Query("blood_type"),
		Offset:    params.Offset,
		Limit:     params.Limit,
	})
	if err != nil {
		return respondError(c, err, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(txs, params, total))
}

// RecordTransaction records an incoming or outgoing movement
// @Summary Record transaction
// @Description Incoming creates a lot at the destination; outgoing dispatches like /inventory/allocate
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.TransactionInput true "Transaction data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /inventory/transactions [post]
func (h *InventoryHandler) RecordTransaction(c *fiber.Ctx) error {
	var req services.TransactionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.inventoryService.RecordTransaction(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to record transaction")
	}

	return response.Created(c, "Transaction recorded successfully", result)
}

// Export downloads the inventory workbook
// @Summary Export inventory
// @Description Download active lots, the transaction log and a summary as an xlsx workbook
// @Tags Inventory
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /inventory/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	raw, err := h.inventoryService.Export(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to export inventory")
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(raw)
}
