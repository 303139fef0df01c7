package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a back-office account. One role per user.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone       string         `gorm:"type:varchar(30)" json:"phone"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	RoleID      *uint          `gorm:"index" json:"role_id"`
	Role        *Role          `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"role,omitempty"`
	Status      UserStatus     `gorm:"type:smallint;not null" json:"status"`
	AvatarURL   string         `gorm:"type:varchar(500)" json:"avatar_url"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}
