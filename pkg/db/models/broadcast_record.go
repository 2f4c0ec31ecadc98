package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// BroadcastRecord is one driver's standing response to an order offer, keyed by
// the (order, driver) pair. Re-broadcasting upserts the row back to pending.
type BroadcastRecord struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_broadcast_order_driver"`
	DriverID  uuid.UUID             `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:idx_broadcast_order_driver"`
	Status    enums.BroadcastStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
