package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// WalletTransaction is an append-only ledger row. Amount is signed: credits are
// positive, withdrawals negative, so the per-user sum reconciles with the
// wallet balance.
type WalletTransaction struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index"`
	Amount      decimal.Decimal             `gorm:"column:amount;type:numeric(12,2);not null"`
	Description string                      `gorm:"column:description;not null"`
	Type        enums.WalletTransactionType `gorm:"column:type;type:text;not null"`
	ReferenceID *uuid.UUID                  `gorm:"column:reference_id;type:uuid"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
