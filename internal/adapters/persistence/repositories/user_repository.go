package repositories

import (
	"context"

	"bloodbank-api/internal/adapters/persistence/models"
	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	ensureID(&user.ID)
	row := models.UserFromDomain(user)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return wrapErr("create user", err)
	}
	*user = row.ToDomain()
	return nil
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrapErr("get user", err)
	}
	user := row.ToDomain()
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, wrapErr("get user", err)
	}
	user := row.ToDomain()
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	row := models.UserFromDomain(user)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return wrapErr("update user", err)
	}
	*user = row.ToDomain()
	return nil
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var rows []models.User
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count users", err)
	}

	// Get users with pagination
	if err := r.db.WithContext(ctx).Scopes(paginate(offset, limit)).Order("email ASC").Find(&rows).Error; err != nil {
		return nil, 0, wrapErr("list users", err)
	}

	users := make([]domain.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, total, nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, wrapErr("count users", err)
}

// CountByRole counts users holding a role
func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", string(role)).Count(&count).Error
	return count, wrapErr("count users", err)
}
