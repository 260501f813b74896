package middleware

import (
	"errors"
	"strings"

	"bloodbank-api/internal/config"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/pkg/jwt"
	"bloodbank-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Context keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := tokenFromRequest(c)

		// No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// Set user info in context
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// tokenFromRequest reads the access token from the cookie first, then the Authorization header
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Check if user's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if domain.Role(role) == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// StaffOnly middleware allows admin and hospital roles
func StaffOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin, domain.RoleHospital)
}
