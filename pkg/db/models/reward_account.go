package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// RewardAccount holds the per-user running points total plus the tier derived
// from it. Level is recomputed on every points change, never left stale.
type RewardAccount struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Points     int               `gorm:"column:points;not null;default:0"`
	Level      enums.RewardLevel `gorm:"column:level;type:text;not null;default:'Bronze'"`
	TotalSpent decimal.Decimal   `gorm:"column:total_spent;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
