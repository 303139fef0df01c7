package model

import "time"

const (
	ActionCreateRole            = "CREATE_ROLE"
	ActionUpdateRole            = "UPDATE_ROLE"
	ActionDeleteRole            = "DELETE_ROLE"
	ActionSetMenuPermissions    = "SET_MENU_PERMISSIONS"
	ActionCreateMenu            = "CREATE_MENU"
	ActionUpdateMenu            = "UPDATE_MENU"
	ActionDeleteMenu            = "DELETE_MENU"
	ActionCreateUser            = "CREATE_USER"
	ActionUpdateUser            = "UPDATE_USER"
	ActionDeleteUser            = "DELETE_USER"
	ActionResetPassword         = "RESET_PASSWORD"
	ActionCreateTenant          = "CREATE_TENANT"
	ActionUpdateTenant          = "UPDATE_TENANT"
	ActionDeleteTenant          = "DELETE_TENANT"
	ActionCreatePayment         = "CREATE_PAYMENT"
	ActionUpdatePaymentStatus   = "UPDATE_PAYMENT_STATUS"
	ActionPaymentReminder       = "PAYMENT_REMINDER"
	ActionGenerateUserTasks     = "GENERATE_USER_TASKS"
	ActionCreateComplaintReport = "CREATE_COMPLAINT_REPORT"
	ActionUpdateComplaintStatus = "UPDATE_COMPLAINT_STATUS"
	ActionUpdateSetting         = "UPDATE_SETTING"
	ActionUpload                = "UPLOAD"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"` // Nullable for automated jobs
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL;" json:"user,omitempty"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);index" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
