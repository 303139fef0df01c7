package model

import "time"

// Role is a named permission level. Level is a display/sort ranking only and confers nothing.
type Role struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	Name            string               `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description     string               `gorm:"type:text" json:"description"`
	Level           int                  `gorm:"not null" json:"level"`
	IsSystem        bool                 `json:"is_system"` // Prevent deletion of built-in roles
	MenuPermissions []RoleMenuPermission `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// RoleMenuPermission is the authoritative grant for a (role, menu) pair.
type RoleMenuPermission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoleID     uint      `gorm:"not null;uniqueIndex:idx_role_menu" json:"role_id"`
	MenuID     uint      `gorm:"not null;uniqueIndex:idx_role_menu;index" json:"menu_id"`
	CanView    bool      `gorm:"not null" json:"can_view"`
	CanCreate  bool      `gorm:"not null" json:"can_create"`
	CanUpdate  bool      `gorm:"not null" json:"can_update"`
	CanDelete  bool      `gorm:"not null" json:"can_delete"`
	CanConfirm bool      `gorm:"not null" json:"can_confirm"`
	CreatedAt  time.Time `json:"created_at"`
}

