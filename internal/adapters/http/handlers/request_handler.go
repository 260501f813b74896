package handlers

import (
	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/pkg/pagination"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles hospital blood request endpoints
type RequestHandler struct {
	requestService *services.HospitalRequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.HospitalRequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// SetStatusRequest represents a status change by target status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ListRequests lists hospital requests, most recent first
// @Summary List hospital requests
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Hospital name or blood type contains"
// @Param status query string false "pending, approved, rejected or completed"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	reqs, total, err := h.requestService.List(c.Context(), &services.ListRequestsInput{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Offset: params.Offset,
		Limit:  params.Limit,
	})
	if err != nil {
		return respondError(c, err, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", pagination.NewResponse(reqs, params, total))
}

// CreateRequest files a new hospital request
// @Summary Create hospital request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	var req services.CreateRequestInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	created, err := h.requestService.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to create request")
	}

	return response.Created(c, "Request created successfully", fiber.Map{
		"request": created,
	})
}

// GetRequest gets a request by ID
// @Summary Get hospital request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	req, err := h.requestService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to get request")
	}

	return response.Success(c, "Request retrieved successfully", fiber.Map{
		"request": req,
	})
}

// Approve moves a pending request to approved
// @Summary Approve request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	req, err := h.requestService.Approve(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to approve request")
	}

	return response.Success(c, "Request approved", fiber.Map{"request": req})
}

// Reject moves a pending request to rejected
// @Summary Reject request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	req, err := h.requestService.Reject(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to reject request")
	}

	return response.Success(c, "Request rejected", fiber.Map{"request": req})
}

// Complete moves an approved request to completed
// @Summary Complete request
// @Description Marks the request fulfilled; dispatch the units separately through /inventory/allocate
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *fiber.Ctx) error {
	req, err := h.requestService.Complete(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to complete request")
	}

	return response.Success(c, "Request completed", fiber.Map{"request": req})
}

// SetStatus applies the transition that leads to the given status
// @Summary Set request status
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body SetStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/status [patch]
func (h *RequestHandler) SetStatus(c *fiber.Ctx) error {
	var body SetStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	req, err := h.requestService.SetStatus(c.Context(), c.Params("id"), body.Status)
	if err != nil {
		return respondError(c, err, "Failed to update request status")
	}

	return response.Success(c, "Request status updated", fiber.Map{"request": req})
}
