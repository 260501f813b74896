package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("units", "must be a positive integer"), fiber.StatusBadRequest},
		{"insufficient stock", &domain.InsufficientStockError{BloodType: domain.ONegative, Requested: 6, Available: 5}, fiber.StatusConflict},
		{"transition", &domain.TransitionError{From: domain.RequestRejected, To: domain.RequestApproved}, fiber.StatusConflict},
		{"depleted lot", domain.ErrLotDepleted, fiber.StatusConflict},
		{"weak password", services.ErrWeakPassword, fiber.StatusBadRequest},
		{"duplicate", domain.ErrDuplicateEntry, fiber.StatusConflict},
		{"not found", domain.ErrNotFound, fiber.StatusNotFound},
		{"backend down", &domain.BackendError{Op: "commit allocation", Err: errors.New("connection refused")}, fiber.StatusServiceUnavailable},
		{"backend down wrapped", fmt.Errorf("allocate: %w", &domain.BackendError{Op: "list available lots", Err: errors.New("timeout")}), fiber.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err, "Failed") })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)

			var body response.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRespondError_InsufficientStockCarriesAvailable(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, &domain.InsufficientStockError{BloodType: domain.ONegative, Requested: 6, Available: 5}, "Failed")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Data struct {
			BloodType string `json:"blood_type"`
			Requested int    `json:"requested"`
			Available int    `json:"available"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "O-", body.Data.BloodType)
	assert.Equal(t, 6, body.Data.Requested)
	assert.Equal(t, 5, body.Data.Available)
}
