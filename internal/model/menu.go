package model

import "time"

// Menu is a navigation entry. ParentID forms a tree; acyclicity is enforced by the menu service,
// not by the schema.
type Menu struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"type:varchar(100);not null" json:"title"`
	URL       string `gorm:"type:varchar(255);index" json:"url"`
	Icon      string `gorm:"type:varchar(100)" json:"icon"`
	ParentID  *uint  `gorm:"index" json:"parent_id"`
	SortOrder int    `gorm:"not null;index" json:"order"`
	IsActive  bool   `gorm:"not null;index" json:"is_active"`

	// Legacy per-menu defaults. Not enforced; RoleMenuPermission is authoritative.
	CanView    bool `json:"can_view"`
	CanAdd     bool `json:"can_add"`
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
	CanConfirm bool `json:"can_confirm"`

	Permissions []RoleMenuPermission `gorm:"foreignKey:MenuID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Menu URLs guarded by the HTTP layer. Seeded menus use the same values.
const (
	MenuURLDashboard  = "/dashboard"
	MenuURLAssets     = "/assets"
	MenuURLUnits      = "/units"
	MenuURLTenants    = "/tenants"
	MenuURLPayments   = "/payments"
	MenuURLTaskGroups = "/task-groups"
	MenuURLTasks      = "/tasks"
	MenuURLUserTasks  = "/user-tasks"
	MenuURLScanInfos  = "/scan-infos"
	MenuURLComplaints = "/complaint-reports"
	MenuURLUsers      = "/users"
	MenuURLRoles      = "/roles"
	MenuURLMenus      = "/menus"
	MenuURLSettings   = "/settings"
	MenuURLAuditLogs  = "/audit-logs"
)
