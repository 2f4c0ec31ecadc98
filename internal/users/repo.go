package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// Repository reads the user boundary. Registration and credentials live in a
// separate identity service; dispatch only needs roles, statuses, and driver
// positions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListActiveDrivers(ctx context.Context) ([]models.User, error)
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lng float64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a users repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListActiveDrivers(ctx context.Context) ([]models.User, error) {
	var drivers []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", enums.UserRoleDriver, enums.UserStatusActive).
		Order("created_at ASC").
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *repository) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"lat": lat, "lng": lng}).Error
}
