package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moh9765/dispatchly-backend/pkg/enums"
	"github.com/moh9765/dispatchly-backend/pkg/types"
)

// Order is the customer-facing order aggregate. DriverID stays null until the
// assignment resolver hands the order to exactly one driver; orders are never
// physically deleted.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	DriverID        *uuid.UUID            `gorm:"column:driver_id;type:uuid;index"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount     decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DeliveryAddress types.DeliveryAddress `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
