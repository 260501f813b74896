package services

import (
	"context"
	"testing"

	"bloodbank-api/internal/config"
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

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newTestAuth() (*AuthService, *UserService) {
	store := newTestStore()
	log := zap.NewNop()
	return NewAuthService(store.Users, store.RefreshTokens, testConfig(), log), NewUserService(store.Users, log)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	reg, err := auth.Register(ctx, &RegisterInput{Email: "Donor@Example.com", Name: "Dana", Password: "donorpass1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDonor, reg.User.Role)
	assert.Equal(t, "donor@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.AccessToken)

	claims, err := auth.ValidateAccessToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, "donor", claims.Role)

	_, err = auth.Register(ctx, &RegisterInput{Email: "donor@example.com", Name: "Dup", Password: "donorpass1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	login, err := auth.Login(ctx, &LoginInput{Email: "DONOR@example.com", Password: "donorpass1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = auth.Login(ctx, &LoginInput{Email: "donor@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "donorpass1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	auth, _ := newTestAuth()

	_, err := auth.Register(context.Background(), &RegisterInput{Email: "a@example.com", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = auth.Register(context.Background(), &RegisterInput{Email: "a@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	reg, err := auth.Register(ctx, &RegisterInput{Email: "r@example.com", Name: "R", Password: "refreshme"})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// the rotated-out token no longer works
	_, err = auth.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, auth.Logout(ctx, refreshed.RefreshToken))
	_, err = auth.RefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_InactiveUserCannotLogin(t *testing.T) {
	ctx := context.Background()
	auth, users := newTestAuth()

	admin, err := users.CreateUser(ctx, &CreateUserInput{Email: "admin@example.com", Name: "Admin", Password: "adminpass", Role: "admin"})
	require.NoError(t, err)
	reg, err := auth.Register(ctx, &RegisterInput{Email: "x@example.com", Name: "X", Password: "password1"})
	require.NoError(t, err)

	inactive := false
	_, err = users.UpdateUserByAdmin(ctx, reg.User.ID, admin.ID, &UpdateUserByAdminInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = auth.Login(ctx, &LoginInput{Email: "x@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUserInactive)

	_, err = auth.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthService_LogoutAll(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	reg, err := auth.Register(ctx, &RegisterInput{Email: "m@example.com", Name: "M", Password: "password1"})
	require.NoError(t, err)
	second, err := auth.Login(ctx, &LoginInput{Email: "m@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, auth.LogoutAll(ctx, reg.User.ID))

	for _, token := range []string{reg.RefreshToken, second.RefreshToken} {
		_, err := auth.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}

	me, err := auth.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "m@example.com", me.Email)
}
