package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"bloodbank-api/internal/config"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: "test-secret", RefreshSecret: "test-refresh", AccessTokenMins: 5, RefreshTokenDays: 1},
	}
}

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrInternalServerError })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, fiber.StatusNotFound, entries[1].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Get("/staff", AuthMiddleware(cfg), StaffOnly(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalEmail).(string))
	})
	app.Get("/admin", AuthMiddleware(cfg), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	token := func(role domain.Role) string {
		tok, err := jwt.GenerateAccessToken("u-1", "user@example.com", string(role), cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		path   string
		auth   string
		cookie string
		want   int
	}{
		{"no token", "/staff", "", "", fiber.StatusUnauthorized},
		{"garbage token", "/staff", "Bearer nope", "", fiber.StatusUnauthorized},
		{"donor on staff route", "/staff", "Bearer " + token(domain.RoleDonor), "", fiber.StatusForbidden},
		{"hospital on staff route", "/staff", "Bearer " + token(domain.RoleHospital), "", fiber.StatusOK},
		{"hospital on admin route", "/admin", "Bearer " + token(domain.RoleHospital), "", fiber.StatusForbidden},
		{"admin via cookie", "/admin", "", token(domain.RoleAdmin), fiber.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.auth)
			}
			if tt.cookie != "" {
				req.Header.Set(fiber.HeaderCookie, "access_token="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/public", ReferenceDataCache(), func(c *fiber.Ctx) error { return c.SendString("x") })
	app.Get("/none", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("x") })
	app.Get("/fail", CacheControl(time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadRequest) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/public", nil))
	require.NoError(t, err)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get(fiber.HeaderCacheControl))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/none", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-cache", resp.Header.Get(fiber.HeaderPragma))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get(fiber.HeaderCacheControl))
}
