package broadcast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// Repository manages persistence for broadcast records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, orderID, driverID uuid.UUID) error
	Get(ctx context.Context, orderID, driverID uuid.UUID) (*models.BroadcastRecord, error)
	ListPendingForDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error)
	MarkStatus(ctx context.Context, orderID, driverID uuid.UUID, status enums.BroadcastStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a broadcast repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert creates the (order, driver) record or resets an existing one back to
// pending, so a re-broadcast re-offers the order to drivers who rejected it.
func (r *repository) Upsert(ctx context.Context, orderID, driverID uuid.UUID) error {
	record := models.BroadcastRecord{
		OrderID:  orderID,
		DriverID: driverID,
		Status:   enums.BroadcastStatusPending,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "driver_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":     enums.BroadcastStatusPending,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(&record).Error
}

func (r *repository) Get(ctx context.Context, orderID, driverID uuid.UUID) (*models.BroadcastRecord, error) {
	var record models.BroadcastRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND driver_id = ?", orderID, driverID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPendingForDriver returns orders still open for this driver: the record
// is pending, the order is still broadcasted, and nobody has claimed it.
func (r *repository) ListPendingForDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN broadcast_records br ON br.order_id = orders.id").
		Where("br.driver_id = ? AND br.status = ?", driverID, enums.BroadcastStatusPending).
		Where("orders.status = ? AND orders.driver_id IS NULL", enums.OrderStatusBroadcasted).
		Preload("Items").
		Order("orders.created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) MarkStatus(ctx context.Context, orderID, driverID uuid.UUID, status enums.BroadcastStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BroadcastRecord{}).
		Where("order_id = ? AND driver_id = ?", orderID, driverID).
		Update("status", status)
	return res.RowsAffected, res.Error
}
