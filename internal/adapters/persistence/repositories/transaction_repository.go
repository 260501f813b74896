package repositories

import (
	"context"

	"bloodbank-api/internal/adapters/persistence/models"
	"bloodbank-api/internal/core/domain"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository on GORM
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create appends a transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	ensureID(&tx.ID)
	row := models.TransactionFromDomain(tx)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return wrapErr("create transaction", err)
	}
	*tx = row.ToDomain()
	return nil
}

// List lists transactions, most recent first
func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]domain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.BloodType != "" {
		query = query.Where("blood_type = ?", string(filter.BloodType))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count transactions", err)
	}

	var rows []models.Transaction
	if err := query.Scopes(paginate(offset, limit)).Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, 0, wrapErr("list transactions", err)
	}

	txs := make([]domain.Transaction, len(rows))
	for i := range rows {
		txs[i] = rows[i].ToDomain()
	}
	return txs, total, nil
}
