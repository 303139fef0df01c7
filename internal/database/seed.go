package database

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// MenuSeed is one entry of the default navigation. Children are created under it.
type MenuSeed struct {
	Title    string
	URL      string
	Icon     string
	Children []MenuSeed
}

// DefaultMenus is the navigation created by Seed. Every URL guarded by the API appears here.
func DefaultMenus() []MenuSeed {
	return []MenuSeed{
		{Title: "Dashboard", URL: model.MenuURLDashboard, Icon: "dashboard"},
		{Title: "Property", Icon: "building", Children: []MenuSeed{
			{Title: "Assets", URL: model.MenuURLAssets, Icon: "apartment"},
			{Title: "Units", URL: model.MenuURLUnits, Icon: "door"},
			{Title: "Tenants", URL: model.MenuURLTenants, Icon: "people"},
			{Title: "Payments", URL: model.MenuURLPayments, Icon: "payments"},
		}},
		{Title: "Operations", Icon: "build", Children: []MenuSeed{
			{Title: "Task groups", URL: model.MenuURLTaskGroups, Icon: "event_repeat"},
			{Title: "Tasks", URL: model.MenuURLTasks, Icon: "checklist"},
			{Title: "User tasks", URL: model.MenuURLUserTasks, Icon: "assignment_ind"},
			{Title: "Scan infos", URL: model.MenuURLScanInfos, Icon: "qr_code_scanner"},
			{Title: "Complaints", URL: model.MenuURLComplaints, Icon: "report"},
		}},
		{Title: "System", Icon: "settings", Children: []MenuSeed{
			{Title: "Users", URL: model.MenuURLUsers, Icon: "person"},
			{Title: "Roles", URL: model.MenuURLRoles, Icon: "admin_panel_settings"},
			{Title: "Menus", URL: model.MenuURLMenus, Icon: "menu"},
			{Title: "Settings", URL: model.MenuURLSettings, Icon: "tune"},
			{Title: "Audit logs", URL: model.MenuURLAuditLogs, Icon: "history"},
		}},
	}
}

type grantSet map[model.PermissionKind]bool

var (
	viewOnly   = grantSet{model.PermView: true}
	readWrite  = grantSet{model.PermView: true, model.PermCreate: true, model.PermUpdate: true}
	allButDrop = grantSet{model.PermView: true, model.PermCreate: true, model.PermUpdate: true, model.PermConfirm: true}
)

type roleSeed struct {
	Description string
	Level       int
	// nil grants every flag on every menu
	Grants map[string]grantSet
}

func defaultRoles() map[string]roleSeed {
	return map[string]roleSeed{
		RoleAdmin: {Description: "Full access to every menu", Level: 100},
		RoleManager: {Description: "Runs properties and operations", Level: 50, Grants: map[string]grantSet{
			model.MenuURLDashboard:  viewOnly,
			model.MenuURLAssets:     readWrite,
			model.MenuURLUnits:      readWrite,
			model.MenuURLTenants:    allButDrop,
			model.MenuURLPayments:   allButDrop,
			model.MenuURLTaskGroups: readWrite,
			model.MenuURLTasks:      readWrite,
			model.MenuURLUserTasks:  readWrite,
			model.MenuURLScanInfos:  viewOnly,
			model.MenuURLComplaints: allButDrop,
			model.MenuURLUsers:      viewOnly,
			model.MenuURLAuditLogs:  viewOnly,
		}},
		RoleStaff: {Description: "Field staff", Level: 10, Grants: map[string]grantSet{
			model.MenuURLUserTasks:  {model.PermView: true, model.PermUpdate: true},
			model.MenuURLScanInfos:  {model.PermView: true, model.PermCreate: true},
			model.MenuURLComplaints: {model.PermView: true, model.PermCreate: true},
		}},
	}
}

// SeedOptions controls the admin account created by Seed
type SeedOptions struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Seed creates the default menus, roles with their permission matrices and the admin user.
// Existing rows are kept; grants of the default roles are reset to the defaults.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	opts.AdminEmail = strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if opts.AdminEmail == "" || len(opts.AdminPassword) < 8 {
		return fmt.Errorf("admin email and a password of at least 8 characters are required")
	}
	if opts.AdminName == "" {
		opts.AdminName = "Administrator"
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menus, err := seedMenus(tx, DefaultMenus(), nil)
		if err != nil {
			return err
		}

		var adminRoleID uint
		for name, def := range defaultRoles() {
			role := model.Role{Name: name}
			if err := tx.Where(model.Role{Name: name}).
				Attrs(model.Role{Description: def.Description, Level: def.Level, IsSystem: true}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("failed to seed role '%s': %w", name, err)
			}
			if name == RoleAdmin {
				adminRoleID = role.ID
			}
			if err := seedGrants(tx, role.ID, menus, def.Grants); err != nil {
				return fmt.Errorf("failed to seed permissions of role '%s': %w", name, err)
			}
		}

		return seedAdmin(tx, adminRoleID, opts)
	})
}

// seedMenus creates missing menus and returns their ids keyed by URL. Group menus have no URL
// and are keyed by "#" + title.
func seedMenus(tx *gorm.DB, seeds []MenuSeed, parentID *uint) (map[string]uint, error) {
	ids := make(map[string]uint)
	for i, s := range seeds {
		menu := model.Menu{}
		q := tx.Where("title = ?", s.Title)
		if parentID == nil {
			q = q.Where("parent_id IS NULL")
		} else {
			q = q.Where("parent_id = ?", *parentID)
		}
		err := q.Attrs(model.Menu{
			Title: s.Title, URL: s.URL, Icon: s.Icon, ParentID: parentID,
			SortOrder: (i + 1) * 10, IsActive: true, CanView: true,
		}).FirstOrCreate(&menu).Error
		if err != nil {
			return nil, fmt.Errorf("failed to seed menu '%s': %w", s.Title, err)
		}
		key := s.URL
		if key == "" {
			key = "#" + s.Title
		}
		ids[key] = menu.ID

		if len(s.Children) > 0 {
			children, err := seedMenus(tx, s.Children, &menu.ID)
			if err != nil {
				return nil, err
			}
			for k, v := range children {
				ids[k] = v
			}
		}
	}
	return ids, nil
}

// grantRows expands a role's grant map into permission rows. A nil map grants every flag on every
// menu. Group menus of restricted roles get no row; navigation resolution adds them as ancestors.
func grantRows(roleID uint, menus map[string]uint, grants map[string]grantSet) []model.RoleMenuPermission {
	rows := make([]model.RoleMenuPermission, 0, len(menus))
	for key, menuID := range menus {
		var g grantSet
		switch {
		case grants == nil:
			g = grantSet{model.PermView: true, model.PermCreate: true, model.PermUpdate: true, model.PermDelete: true, model.PermConfirm: true}
		case strings.HasPrefix(key, "#"):
			continue
		default:
			var ok bool
			if g, ok = grants[key]; !ok {
				continue
			}
		}
		rows = append(rows, model.RoleMenuPermission{
			RoleID:     roleID,
			MenuID:     menuID,
			CanView:    g[model.PermView],
			CanCreate:  g[model.PermCreate],
			CanUpdate:  g[model.PermUpdate],
			CanDelete:  g[model.PermDelete],
			CanConfirm: g[model.PermConfirm],
		})
	}
	return rows
}

func seedGrants(tx *gorm.DB, roleID uint, menus map[string]uint, grants map[string]grantSet) error {
	rows := grantRows(roleID, menus, grants)
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}, {Name: "menu_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_view", "can_create", "can_update", "can_delete", "can_confirm"}),
	}).Create(&rows).Error
}

func seedAdmin(tx *gorm.DB, roleID uint, opts SeedOptions) error {
	var count int64
	if err := tx.Model(&model.User{}).Where("email = ?", opts.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := model.User{
		Name:     opts.AdminName,
		Email:    opts.AdminEmail,
		Password: string(hash),
		RoleID:   &roleID,
		Status:   model.UserStatusActive,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}
