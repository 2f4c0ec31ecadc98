package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// RewardTransaction is an append-only ledger row; the sum of a user's rows must
// reconcile with the account's current points.
type RewardTransaction struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index"`
	Points      int                         `gorm:"column:points;not null"`
	Description string                      `gorm:"column:description;not null"`
	Type        enums.RewardTransactionType `gorm:"column:type;type:text;not null"`
	ReferenceID *uuid.UUID                  `gorm:"column:reference_id;type:uuid"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
