package handlers

import (
	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/pkg/pagination"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonorHandler handles donor endpoints
type DonorHandler struct {
	donorService *services.DonorService
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(donorService *services.DonorService) *DonorHandler {
	return &DonorHandler{
		donorService: donorService,
	}
}

// ListDonors lists donors ordered by name
// @Summary List donors
// @Description Search donors by name or email and filter by blood type or eligibility
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email contains"
// @Param blood_type query string false "Blood type, e.g. O-"
// @Param status query string false "eligible or ineligible"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donors [get]
func (h *DonorHandler) ListDonors(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	donors, total, err := h.donorService.List(c.Context(), &services.ListDonorsInput{
		Search:    c.Query("search"),
		BloodType: c.Query("blood_type"),
		Status:    c.Query("status"),
		Offset:    params.Offset,
		Limit:     params.Limit,
	})
	if err != nil {
		return respondError(c, err, "Failed to list donors")
	}

	return response.Success(c, "Donors retrieved successfully", pagination.NewResponse(donors, params, total))
}

// CreateDonor registers a donor
// @Summary Register donor
// @Description Register a new donor; donors start eligible
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDonorInput true "Donor data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donors [post]
func (h *DonorHandler) CreateDonor(c *fiber.Ctx) error {
	var req services.CreateDonorInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	donor, err := h.donorService.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to create donor")
	}

	return response.Created(c, "Donor registered successfully", fiber.Map{
		"donor": donor,
	})
}

// GetDonor gets a donor by ID
// @Summary Get donor
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donors/{id} [get]
func (h *DonorHandler) GetDonor(c *fiber.Ctx) error {
	donor, err := h.donorService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to get donor")
	}

	return response.Success(c, "Donor retrieved successfully", fiber.Map{
		"donor": donor,
	})
}

// UpdateDonor applies a partial update
// @Summary Update donor
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Donor ID"
// @Param body body services.UpdateDonorInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donors/{id} [put]
func (h *DonorHandler) UpdateDonor(c *fiber.Ctx) error {
	var req services.UpdateDonorInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	donor, err := h.donorService.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "Failed to update donor")
	}

	return response.Success(c, "Donor updated successfully", fiber.Map{
		"donor": donor,
	})
}

// RecordDonation stamps today's donation and marks the donor ineligible
// @Summary Record donation
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donors/{id}/donations [post]
func (h *DonorHandler) RecordDonation(c *fiber.Ctx) error {
	donor, err := h.donorService.RecordDonation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to record donation")
	}

	return response.Success(c, "Donation recorded successfully", fiber.Map{
		"donor": donor,
	})
}
