package repositories

import (
	"context"

	"bloodbank-api/internal/adapters/persistence/models"
	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// hospitalRequestRepository implements HospitalRequestRepository on GORM
type hospitalRequestRepository struct {
	db *gorm.DB
}

// NewHospitalRequestRepository creates a new hospital request repository
func NewHospitalRequestRepository(db *gorm.DB) HospitalRequestRepository {
	return &hospitalRequestRepository{db: db}
}

// Create creates a new request
func (r *hospitalRequestRepository) Create(ctx context.Context, req *domain.HospitalRequest) error {
	ensureID(&req.ID)
	row := models.HospitalRequestFromDomain(req)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return wrapErr("create request", err)
	}
	*req = row.ToDomain()
	return nil
}

// Update updates a request
func (r *hospitalRequestRepository) Update(ctx context.Context, req *domain.HospitalRequest) error {
	row := models.HospitalRequestFromDomain(req)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return wrapErr("update request", err)
	}
	*req = row.ToDomain()
	return nil
}

// GetByID gets a request by ID
func (r *hospitalRequestRepository) GetByID(ctx context.Context, id string) (*domain.HospitalRequest, error) {
	var row models.HospitalRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrapErr("get request", err)
	}
	req := row.ToDomain()
	return &req, nil
}

// List lists requests, most recent first
func (r *hospitalRequestRepository) List(ctx context.Context, filter RequestFilter, offset, limit int) ([]domain.HospitalRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HospitalRequest{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(hospital_name) LIKE ? OR LOWER(blood_type) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count requests", err)
	}

	var rows []models.HospitalRequest
	if err := query.Scopes(paginate(offset, limit)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, wrapErr("list requests", err)
	}

	reqs := make([]domain.HospitalRequest, len(rows))
	for i := range rows {
		reqs[i] = rows[i].ToDomain()
	}
	return reqs, total, nil
}

// CountByStatus counts requests per status
func (r *hospitalRequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.HospitalRequest{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapErr("count requests by status", err)
	}

	counts := make(map[domain.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.RequestStatus(row.Status)] = row.Total
	}
	return counts, nil
}
