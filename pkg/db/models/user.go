package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

// User is the identity boundary: registration, login, and password handling
// live outside this service. Dispatch only reads id, role, status, and the
// driver's last reported position.
type User struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string           `gorm:"column:email;type:text;not null;uniqueIndex"`
	FullName  string           `gorm:"column:full_name;not null"`
	Role      enums.UserRole   `gorm:"column:role;type:text;not null;default:'customer'"`
	Status    enums.UserStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Lat       *float64         `gorm:"column:lat"`
	Lng       *float64         `gorm:"column:lng"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
