package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// User is a staff account scoped to a single studio.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID     uuid.UUID        `gorm:"column:studio_id;type:uuid;not null;index"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	FirstName    string           `gorm:"column:first_name;not null"`
	LastName     string           `gorm:"column:last_name;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:text;not null"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the name parts for audit attribution.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
