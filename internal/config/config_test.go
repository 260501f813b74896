package config

import (
	"context"
	"testing"

	"bloodbank-api/internal/adapters/persistence/memory"
	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	password.SetCost(bcrypt.MinCost)
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		"APP_MODE":             "dev",
		"STORAGE":              "memory",
		"DB_DRIVER":            "",
		"REDIS_ADDR":           "",
		"STATS_CACHE_SECONDS":  "",
		"STOCK_WATCH_CRON":     "",
		"LINE_NOTIFY_TOKEN":    "",
		"ACCESS_TOKEN_MINUTES": "",
		"DEV_DB_PORT":          "",
		"PROD_DB_HOST":         "",
		"ALLOWED_ORIGINS":      "",
	} {
		t.Setenv(key, value)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.True(t, cfg.UsesMemory())
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 30, cfg.Redis.StatsTTLSeconds)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.JWT.AccessTokenMins)
	assert.Equal(t, "https://notify-api.line.me", cfg.Line.BaseURL)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestFromEnv_ProdPostgres(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_MODE", "prod")
	t.Setenv("STORAGE", "GORM")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("PROD_DB_HOST", "db.internal")
	t.Setenv("STATS_CACHE_SECONDS", "120")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.UsesMemory())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 120, cfg.Redis.StatsTTLSeconds)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"app mode", "APP_MODE", "staging"},
		{"storage", "STORAGE", "sqlite"},
		{"driver", "DB_DRIVER", "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestDSNs(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "bank"}
	assert.Equal(t, "u:p@tcp(h:1)/bank?charset=utf8mb4&parseTime=True&loc=UTC", buildMySQLDSN(d))
	assert.Contains(t, buildPostgresDSN(d), "dbname=bank")

	_, err := dialectorFor(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func seederConfig(mode string) *Config {
	return &Config{
		AppMode: mode,
		Storage: StorageMemory,
		Admin:   AdminConfig{Email: "admin@bloodbank.local", Password: "admin123456", Name: "Administrator"},
	}
}

func TestSeeder_DevMemorySeedsDemoData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, NewSeeder(store, seederConfig("dev"), zap.NewNop()).Run(ctx))

	admins, err := store.Users.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	admin, err := store.Users.GetByEmail(ctx, "admin@bloodbank.local")
	require.NoError(t, err)
	assert.True(t, password.Verify("admin123456", admin.Password))

	available, err := store.Lots.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 7, "the A- lot is seeded reserved")

	_, donors, err := store.Donors.List(ctx, repositories.DonorFilter{}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, donors)

	pending, err := store.Requests.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending[domain.RequestPending])
}

func TestSeeder_AdminOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seeder := NewSeeder(store, seederConfig("prod"), zap.NewNop())

	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))

	admins, err := store.Users.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	lots, err := store.Lots.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, lots)
}
