package handlers

import (
	"errors"

	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto the response envelope.
// fallback is the message used for unexpected errors.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var (
		verr  *domain.ValidationError
		short *domain.InsufficientStockError
		terr  *domain.TransitionError
	)

	switch {
	case errors.As(err, &verr):
		return response.BadRequest(c, verr.Error())
	case errors.As(err, &short):
		return response.ErrorWithData(c, fiber.StatusConflict, short.Error(), fiber.Map{
			"blood_type": short.BloodType,
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.As(err, &terr):
		return response.Conflict(c, terr.Error())
	case errors.Is(err, domain.ErrLotDepleted):
		return response.Conflict(c, "Lot is depleted and can no longer be edited")
	case errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrOldPasswordWrong),
		errors.Is(err, services.ErrCannotChangeOwnRole),
		errors.Is(err, services.ErrCannotDeactivateSelf):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailAlreadyExists), errors.Is(err, services.ErrUserAlreadyExists):
		return response.Conflict(c, "Email already registered")
	case errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, "A record with this email already exists")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, domain.ErrBackendUnavailable):
		return response.ServiceUnavailable(c, "Storage backend unavailable")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// currentUser reads the identity set by the auth middleware
func currentUser(c *fiber.Ctx) (id, email string, role domain.Role, ok bool) {
	id, ok = c.Locals("userID").(string)
	if !ok || id == "" {
		return "", "", "", false
	}
	email, _ = c.Locals("email").(string)
	r, _ := c.Locals("role").(string)
	return id, email, domain.Role(r), true
}
