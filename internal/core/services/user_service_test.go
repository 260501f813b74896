package services

import (
	"context"
	"testing"

	"bloodbank-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	_, users := newTestAuth()

	staff, err := users.CreateUser(ctx, &CreateUserInput{Email: "staff@hospital.org", Name: "Staff", Password: "hospital1", Role: "hospital"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHospital, staff.Role)
	assert.True(t, staff.IsActive)

	_, err = users.CreateUser(ctx, &CreateUserInput{Email: "staff@hospital.org", Name: "Dup", Password: "hospital1", Role: "hospital"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = users.CreateUser(ctx, &CreateUserInput{Email: "x@hospital.org", Name: "X", Password: "hospital1", Role: "janitor"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, total, err := users.ListUsers(ctx, &ListUsersInput{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestUserService_AdminCannotChangeOwnRole(t *testing.T) {
	ctx := context.Background()
	_, users := newTestAuth()

	admin, err := users.CreateUser(ctx, &CreateUserInput{Email: "admin@example.com", Name: "Admin", Password: "adminpass", Role: "admin"})
	require.NoError(t, err)

	role := "donor"
	_, err = users.UpdateUserByAdmin(ctx, admin.ID, admin.ID, &UpdateUserByAdminInput{Role: &role})
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)

	inactive := false
	_, err = users.UpdateUserByAdmin(ctx, admin.ID, admin.ID, &UpdateUserByAdminInput{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrCannotDeactivateSelf)

	_, err = users.UpdateUserByAdmin(ctx, "missing", admin.ID, &UpdateUserByAdminInput{Role: &role})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	auth, users := newTestAuth()

	reg, err := auth.Register(ctx, &RegisterInput{Email: "p@example.com", Name: "P", Password: "original1"})
	require.NoError(t, err)

	err = users.ChangePassword(ctx, reg.User.ID, &ChangePasswordInput{OldPassword: "nope", NewPassword: "replaced1"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	err = users.ChangePassword(ctx, reg.User.ID, &ChangePasswordInput{OldPassword: "original1", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, users.ChangePassword(ctx, reg.User.ID, &ChangePasswordInput{OldPassword: "original1", NewPassword: "replaced1"}))

	_, err = auth.Login(ctx, &LoginInput{Email: "p@example.com", Password: "replaced1"})
	assert.NoError(t, err)

	name := "  Pat  "
	profile, err := users.UpdateProfile(ctx, reg.User.ID, &UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Pat", profile.Name)
}
