package repositories

import (
	"context"

	"bloodbank-api/internal/adapters/persistence/models"
	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// lotRepository implements LotRepository on GORM
type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepository{db: db}
}

// Create creates a new lot
func (r *lotRepository) Create(ctx context.Context, lot *domain.BloodLot) error {
	ensureID(&lot.ID)
	row := models.BloodLotFromDomain(lot)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return wrapErr("create lot", err)
	}
	*lot = row.ToDomain()
	return nil
}

// Update saves lot fields by public ID
func (r *lotRepository) Update(ctx context.Context, lot *domain.BloodLot) error {
	return wrapErr("update lot", updateLot(r.db.WithContext(ctx), lot))
}

func updateLot(db *gorm.DB, lot *domain.BloodLot) error {
	res := db.Model(&models.BloodLot{}).
		Where("id = ?", lot.ID).
		Updates(map[string]interface{}{
			"units":    lot.Units,
			"status":   string(lot.Status),
			"location": lot.Location,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID gets a lot by ID
func (r *lotRepository) GetByID(ctx context.Context, id string) (*domain.BloodLot, error) {
	var row models.BloodLot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrapErr("get lot", err)
	}
	lot := row.ToDomain()
	return &lot, nil
}

// List lists lots, most recent first
func (r *lotRepository) List(ctx context.Context, filter LotFilter, offset, limit int) ([]domain.BloodLot, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BloodLot{})
	if filter.BloodType != "" {
		query = query.Where("blood_type = ?", string(filter.BloodType))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	} else {
		query = query.Where("status <> ?", string(domain.LotDepleted))
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count lots", err)
	}

	var rows []models.BloodLot
	if err := query.Scopes(paginate(offset, limit)).Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, 0, wrapErr("list lots", err)
	}
	return lotsToDomain(rows), total, nil
}

// ListAvailable returns available lots in insertion order
func (r *lotRepository) ListAvailable(ctx context.Context) ([]domain.BloodLot, error) {
	var rows []models.BloodLot
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.LotAvailable)).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapErr("list available lots", err)
	}
	return lotsToDomain(rows), nil
}

// ListByBloodType returns lots of one type, soonest expiry first
func (r *lotRepository) ListByBloodType(ctx context.Context, bloodType domain.BloodType) ([]domain.BloodLot, error) {
	var rows []models.BloodLot
	err := r.db.WithContext(ctx).
		Where("blood_type = ? AND status <> ?", string(bloodType), string(domain.LotDepleted)).
		Order("expiry_date ASC").
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapErr("list lots by type", err)
	}
	return lotsToDomain(rows), nil
}

// CommitIntake inserts the lot and its incoming transaction in one DB transaction
func (r *lotRepository) CommitIntake(ctx context.Context, lot *domain.BloodLot, tx *domain.Transaction) error {
	ensureID(&lot.ID)
	ensureID(&tx.ID)
	lotRow := models.BloodLotFromDomain(lot)
	txRow := models.TransactionFromDomain(tx)

	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(lotRow).Error; err != nil {
			return err
		}
		return db.Create(txRow).Error
	})
	if err != nil {
		return wrapErr("commit intake", err)
	}

	*lot = lotRow.ToDomain()
	*tx = txRow.ToDomain()
	return nil
}

// CommitAllocation writes lot changes and the outgoing transaction in one DB transaction
func (r *lotRepository) CommitAllocation(ctx context.Context, updated, depleted []domain.BloodLot, tx *domain.Transaction) error {
	ensureID(&tx.ID)
	txRow := models.TransactionFromDomain(tx)

	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		for i := range depleted {
			if err := updateLot(db, &depleted[i]); err != nil {
				return err
			}
		}
		for i := range updated {
			if err := updateLot(db, &updated[i]); err != nil {
				return err
			}
		}
		return db.Create(txRow).Error
	})
	if err != nil {
		return wrapErr("commit allocation", err)
	}

	*tx = txRow.ToDomain()
	return nil
}

// Ping checks the underlying connection
func (r *lotRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapErr("ping", err)
	}
	return wrapErr("ping", sqlDB.PingContext(ctx))
}

func lotsToDomain(rows []models.BloodLot) []domain.BloodLot {
	lots := make([]domain.BloodLot, len(rows))
	for i := range rows {
		lots[i] = rows[i].ToDomain()
	}
	return lots
}
