package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bloodbank-api/internal/adapters/http/middleware"
	"bloodbank-api/internal/adapters/persistence/memory"
	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/config"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/services"
	"bloodbank-api/internal/core/stock"
	"bloodbank-api/internal/pkg/jwt"
	"bloodbank-api/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type nopNotifier struct{}

func (nopNotifier) NotifyNewRequest(context.Context, *domain.HospitalRequest)    {}
func (nopNotifier) NotifyRequestStatus(context.Context, *domain.HospitalRequest) {}
func (nopNotifier) NotifyStockAlert(context.Context, *stock.Stats)               {}

type testApp struct {
	app   *fiber.App
	cfg   *config.Config
	store *repositories.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	password.SetCost(bcrypt.MinCost)

	cfg := &config.Config{
		AppMode: "dev",
		Storage: config.StorageMemory,
		JWT: config.JWTConfig{
			Secret:           "routes-secret",
			RefreshSecret:    "routes-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{SameSite: "lax"},
	}
	log := zap.NewNop()
	store := memory.NewStore()

	inventory := services.NewInventoryService(store.Lots, store.Transactions, nil, 0, log)
	svc := &Services{
		Auth:      services.NewAuthService(store.Users, store.RefreshTokens, cfg, log),
		User:      services.NewUserService(store.Users, log),
		Inventory: inventory,
		Donor:     services.NewDonorService(store.Donors, log),
		Request:   services.NewHospitalRequestService(store.Requests, nopNotifier{}, log),
		Dashboard: services.NewDashboardService(inventory, store.Donors, store.Requests, store.Transactions),
		Store:     store.Lots,
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, cfg, svc)
	return &testApp{app: app, cfg: cfg, store: store}
}

// tokenFor creates a user with role and returns an access token for it
func (a *testApp) tokenFor(t *testing.T, role domain.Role, email string) string {
	t.Helper()
	user := &domain.User{Email: email, Name: string(role), Password: "x", Role: role, IsActive: true}
	require.NoError(t, a.store.Users.Create(context.Background(), user))
	token, err := jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role), a.cfg.JWT.Secret, 15)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "healthy", body.Checks["store"])
	assert.Equal(t, "disabled", body.Checks["cache"])
}

func TestRoleGating(t *testing.T) {
	a := newTestApp(t)
	donor := a.tokenFor(t, domain.RoleDonor, "donor@example.com")
	hospital := a.tokenFor(t, domain.RoleHospital, "staff@hospital.org")

	resp, _ := a.do(t, http.MethodGet, "/api/v1/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/v1/inventory", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for _, path := range []string{"/api/v1/inventory", "/api/v1/donors", "/api/v1/requests", "/api/v1/users"} {
		resp, _ = a.do(t, http.MethodGet, path, donor, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	resp, _ = a.do(t, http.MethodGet, "/api/v1/inventory", hospital, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/v1/users", hospital, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := a.do(t, http.MethodGet, "/api/v1/dashboard", donor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash services.Dashboard
	decode(t, env.Data, &dash)
	assert.Equal(t, domain.RoleDonor, dash.Role)
	assert.NotNil(t, dash.Donor)
}

func TestInventoryFlow(t *testing.T) {
	a := newTestApp(t)
	admin := a.tokenFor(t, domain.RoleAdmin, "admin@example.com")

	for _, units := range []int{6, 5} {
		resp, env := a.do(t, http.MethodPost, "/api/v1/inventory", admin, map[string]interface{}{
			"blood_type":    "A+",
			"component":     "Whole Blood",
			"units":         units,
			"location":      "Main Storage",
			"donation_date": time.Now().UTC().Format("2006-01-02"),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	}

	// too much: 409 carrying the available quantity
	resp, env := a.do(t, http.MethodPost, "/api/v1/inventory/allocate", admin, map[string]interface{}{
		"blood_type":  "A+",
		"units":       12,
		"source":      "Main Storage",
		"destination": "City Hospital",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var short struct {
		Available int `json:"available"`
	}
	decode(t, env.Data, &short)
	assert.Equal(t, 11, short.Available)

	resp, env = a.do(t, http.MethodPost, "/api/v1/inventory/allocate", admin, map[string]interface{}{
		"blood_type":  "A+",
		"units":       8,
		"source":      "Main Storage",
		"destination": "City Hospital",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var alloc services.AllocationResult
	decode(t, env.Data, &alloc)
	assert.Equal(t, 3, alloc.Remaining)
	assert.Len(t, alloc.Depleted, 1)

	resp, env = a.do(t, http.MethodGet, "/api/v1/inventory/stats", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		TotalUnits    int      `json:"total_units"`
		CriticalTypes []string `json:"critical_types"`
	}
	decode(t, env.Data, &stats)
	assert.Equal(t, 3, stats.TotalUnits)
	assert.Equal(t, []string{"A+"}, stats.CriticalTypes)

	resp, env = a.do(t, http.MethodGet, "/api/v1/inventory/types/A%2B", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var byType struct {
		Lots []map[string]interface{} `json:"lots"`
	}
	decode(t, env.Data, &byType)
	assert.Len(t, byType.Lots, 1)

	resp, env = a.do(t, http.MethodGet, "/api/v1/inventory/transactions?type=outgoing", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Data []domain.Transaction `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, env.Data, &page)
	assert.Equal(t, 1, page.Meta.Total)
	assert.Equal(t, 8, page.Data[0].Units)
}

func TestInventoryValidationAndLotEdits(t *testing.T) {
	a := newTestApp(t)
	admin := a.tokenFor(t, domain.RoleAdmin, "admin@example.com")

	resp, env := a.do(t, http.MethodPost, "/api/v1/inventory", admin, map[string]interface{}{
		"blood_type": "C+", "component": "Whole Blood", "units": 1, "location": "Main Storage", "donation_date": "2026-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "blood_type")

	resp, _ = a.do(t, http.MethodGet, "/api/v1/inventory/missing-id", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/v1/inventory/transactions", admin, map[string]interface{}{
		"type": "incoming", "blood_type": "B+", "units": 2, "source": "Drive", "destination": "Cold Storage 1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	var recorded services.TransactionResult
	decode(t, env.Data, &recorded)
	require.NotNil(t, recorded.Intake)
	lotID := recorded.Intake.Lot.ID

	resp, env = a.do(t, http.MethodPatch, "/api/v1/inventory/"+lotID, admin, map[string]interface{}{"status": "reserved"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	resp, _ = a.do(t, http.MethodPatch, "/api/v1/inventory/"+lotID, admin, map[string]interface{}{"status": "depleted"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/inventory/allocate", admin, map[string]interface{}{
		"blood_type": "B+", "units": 1, "source": "Cold Storage 1", "destination": "X",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestInventoryExport(t *testing.T) {
	a := newTestApp(t)
	hospital := a.tokenFor(t, domain.RoleHospital, "staff@hospital.org")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/export", nil)
	req.Header.Set("Authorization", "Bearer "+hospital)
	resp, err := a.app.Test(req, 5000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(raw) > 4 && string(raw[:2]) == "PK")
}

func TestHospitalRequestFlow(t *testing.T) {
	a := newTestApp(t)
	hospital := a.tokenFor(t, domain.RoleHospital, "staff@hospital.org")

	resp, env := a.do(t, http.MethodPost, "/api/v1/requests", hospital, map[string]interface{}{
		"hospital_name":   "St. Mary",
		"contact_person":  "Dr. Lee",
		"contact_phone":   "555-0199",
		"blood_type":      "O-",
		"units_requested": 4,
		"urgency":         "urgent",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	var created struct {
		Request domain.HospitalRequest `json:"request"`
	}
	decode(t, env.Data, &created)
	id := created.Request.ID
	assert.Equal(t, domain.RequestPending, created.Request.Status)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/requests/"+id+"/complete", hospital, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/requests/"+id+"/approve", hospital, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = a.do(t, http.MethodPatch, "/api/v1/requests/"+id+"/status", hospital, map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/requests/unknown/approve", hospital, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = a.do(t, http.MethodGet, "/api/v1/requests?status=completed", hospital, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, env.Data, &page)
	assert.Equal(t, 1, page.Meta.Total)
}

func TestDonorFlow(t *testing.T) {
	a := newTestApp(t)
	admin := a.tokenFor(t, domain.RoleAdmin, "admin@example.com")

	body := map[string]interface{}{"name": "Jane", "email": "jane@example.com", "phone": "555", "blood_type": "B-"}
	resp, env := a.do(t, http.MethodPost, "/api/v1/donors", admin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	var created struct {
		Donor domain.Donor `json:"donor"`
	}
	decode(t, env.Data, &created)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/donors", admin, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/v1/donors/"+created.Donor.ID+"/donations", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var donated struct {
		Donor domain.Donor `json:"donor"`
	}
	decode(t, env.Data, &donated)
	assert.Equal(t, domain.DonorIneligible, donated.Donor.Status)
	assert.NotNil(t, donated.Donor.LastDonation)

	resp, env = a.do(t, http.MethodGet, "/api/v1/donors?status=ineligible", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, env.Data, &page)
	assert.Equal(t, 1, page.Meta.Total)
}

func TestAuthFlow(t *testing.T) {
	a := newTestApp(t)

	resp, env := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email": "new@example.com", "name": "New Donor", "password": "donorpass1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	assert.NotEmpty(t, resp.Cookies())

	resp, env = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email": "new@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email": "new@example.com", "password": "donorpass1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	var login services.AuthResponse
	decode(t, env.Data, &login)
	assert.Equal(t, domain.RoleDonor, login.User.Role)

	resp, env = a.do(t, http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{"refresh_token": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserManagement(t *testing.T) {
	a := newTestApp(t)
	admin := a.tokenFor(t, domain.RoleAdmin, "admin@example.com")

	resp, env := a.do(t, http.MethodPost, "/api/v1/users", admin, map[string]interface{}{
		"email": "staff@hospital.org", "name": "Staff", "password": "hospital1", "role": "hospital",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)

	resp, env = a.do(t, http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, env.Data, &page)
	assert.Equal(t, 2, page.Meta.Total)

	resp, _ = a.do(t, http.MethodGet, "/api/v1/reference", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
}
