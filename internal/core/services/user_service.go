package services

import (
	"context"
	"errors"
	"strings"

	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/pkg/password"

	"go.uber.org/zap"
)

// User service errors
var (
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrOldPasswordWrong     = errors.New("old password is incorrect")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
	ErrCannotChangeOwnRole  = errors.New("cannot change your own role")
)

// UserService handles account management
type UserService struct {
	userRepo repositories.UserRepository
	log      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log,
	}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Offset int
	Limit  int
}

// CreateUserInput is an admin-created account (hospital staff or another admin)
type CreateUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserByAdminInput represents update user input (for admin)
type UpdateUserByAdminInput struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Name *string `json:"name"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, total, nil
}

// CreateUser creates an account with any role
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*domain.User, error) {
	email, err := normaliseEmail(input.Email)
	if err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:    email,
		Name:     strings.TrimSpace(input.Name),
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("✅ User created by admin", zap.String("email", user.Email), zap.String("role", string(role)))
	return user, nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserByAdmin updates a user by admin
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id, adminID string, input *UpdateUserByAdminInput) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Prevent admin from changing own role or locking themselves out
	if id == adminID && input.Role != nil {
		return nil, ErrCannotChangeOwnRole
	}
	if id == adminID && input.IsActive != nil && !*input.IsActive {
		return nil, ErrCannotDeactivateSelf
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("✅ User updated by admin",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("is_active", user.IsActive),
	)
	return user, nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input *UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID string, input *ChangePasswordInput) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	// Validate new password
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}
