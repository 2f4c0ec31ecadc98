package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
)

// Repository reads the product catalog. Checkout only needs the current price
// of active products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}
