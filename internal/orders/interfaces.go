package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, from []enums.OrderStatus, driverID *uuid.UUID) (int64, error)
	MarkBroadcasted(ctx context.Context, orderID uuid.UUID) (int64, error)
	ClaimForDriver(ctx context.Context, orderID, driverID uuid.UUID) (int64, error)
	AssignPending(ctx context.Context, orderID, driverID uuid.UUID) (int64, error)
}
