package repositories

import (
	"context"

	"bloodbank-api/internal/adapters/persistence/models"
	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// donorRepository implements DonorRepository on GORM
type donorRepository struct {
	db *gorm.DB
}

// NewDonorRepository creates a new donor repository
func NewDonorRepository(db *gorm.DB) DonorRepository {
	return &donorRepository{db: db}
}

// Create creates a new donor
func (r *donorRepository) Create(ctx context.Context, donor *domain.Donor) error {
	ensureID(&donor.ID)
	row := models.DonorFromDomain(donor)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return wrapErr("create donor", err)
	}
	*donor = row.ToDomain()
	return nil
}

// Update updates a donor
func (r *donorRepository) Update(ctx context.Context, donor *domain.Donor) error {
	row := models.DonorFromDomain(donor)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return wrapErr("update donor", err)
	}
	*donor = row.ToDomain()
	return nil
}

// GetByID gets a donor by ID
func (r *donorRepository) GetByID(ctx context.Context, id string) (*domain.Donor, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail gets a donor by email
func (r *donorRepository) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *donorRepository) first(ctx context.Context, cond string, arg string) (*domain.Donor, error) {
	var row models.Donor
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		return nil, wrapErr("get donor", err)
	}
	donor := row.ToDomain()
	return &donor, nil
}

// ExistsByEmail checks if email exists
func (r *donorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).Where("email = ?", email).Count(&count).Error
	return count > 0, wrapErr("count donors", err)
}

// List lists donors ordered by name
func (r *donorRepository) List(ctx context.Context, filter DonorFilter, offset, limit int) ([]domain.Donor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Donor{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if filter.BloodType != "" {
		query = query.Where("blood_type = ?", string(filter.BloodType))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count donors", err)
	}

	var rows []models.Donor
	if err := query.Scopes(paginate(offset, limit)).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, 0, wrapErr("list donors", err)
	}

	donors := make([]domain.Donor, len(rows))
	for i := range rows {
		donors[i] = rows[i].ToDomain()
	}
	return donors, total, nil
}

// CountByStatus counts donors per eligibility status
func (r *donorRepository) CountByStatus(ctx context.Context) (map[domain.DonorStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Donor{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapErr("count donors by status", err)
	}

	counts := make(map[domain.DonorStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.DonorStatus(row.Status)] = row.Total
	}
	return counts, nil
}
