package repositories

import (
	"errors"
	"strings"

	"bloodbank-api/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// wrapErr maps gorm errors onto domain errors; anything else is a backend failure
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateEntry
	default:
		return &domain.BackendError{Op: op, Err: err}
	}
}

// paginate applies offset/limit; limit <= 0 returns everything
func paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Offset(offset).Limit(limit)
	}
}

// likePattern builds a case-insensitive LIKE pattern for LOWER(column) matches
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
