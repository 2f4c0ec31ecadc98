package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus flips the order status, constrained to the allowed source
// statuses and optionally scoped to the assigned driver. The source constraint
// lives in the WHERE clause so terminal states cannot be re-entered even under
// concurrent updates; the row count lets callers classify the refusal.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, from []enums.OrderStatus, driverID *uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	if driverID != nil {
		q = q.Where("driver_id = ?", *driverID)
	}
	res := q.Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkBroadcasted flips an unassigned order to broadcasted. The condition
// repeats the caller's precondition read so an accept landing in between
// cannot be overwritten; zero rows means the order was claimed meanwhile.
func (r *repository) MarkBroadcasted(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND driver_id IS NULL AND status IN ?", orderID,
			[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusBroadcasted}).
		Update("status", enums.OrderStatusBroadcasted)
	return res.RowsAffected, res.Error
}

// ClaimForDriver performs the single conditional update that decides the
// accept race. Exactly one concurrent caller sees RowsAffected == 1.
func (r *repository) ClaimForDriver(ctx context.Context, orderID, driverID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND driver_id IS NULL AND status IN ?", orderID,
			[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusBroadcasted}).
		Updates(map[string]any{
			"driver_id": driverID,
			"status":    enums.OrderStatusInTransit,
		})
	return res.RowsAffected, res.Error
}

// AssignPending is the admin direct-assignment guard: only a pending,
// unassigned order can be handed to a driver.
func (r *repository) AssignPending(ctx context.Context, orderID, driverID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND driver_id IS NULL AND status = ?", orderID, enums.OrderStatusPending).
		Updates(map[string]any{
			"driver_id": driverID,
			"status":    enums.OrderStatusInTransit,
		})
	return res.RowsAffected, res.Error
}
