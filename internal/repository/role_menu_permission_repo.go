package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

// RoleMenuPermissionRepository stores grant rows. Rows are only ever replaced per role, never patched.
type RoleMenuPermissionRepository interface {
	ListByRole(ctx context.Context, roleID uint) ([]model.RoleMenuPermission, error)
	FindByRoleAndMenu(ctx context.Context, roleID, menuID uint) (*model.RoleMenuPermission, error)
	DeleteByRole(ctx context.Context, roleID uint) error
	BulkCreate(ctx context.Context, rows []model.RoleMenuPermission) error
}

type roleMenuPermissionRepository struct {
	db *gorm.DB
}

func NewRoleMenuPermissionRepository(db *gorm.DB) RoleMenuPermissionRepository {
	return &roleMenuPermissionRepository{db: db}
}

func (r *roleMenuPermissionRepository) ListByRole(ctx context.Context, roleID uint) ([]model.RoleMenuPermission, error) {
	var rows []model.RoleMenuPermission
	if err := GetDB(ctx, r.db).Where("role_id = ?", roleID).Order("menu_id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roleMenuPermissionRepository) FindByRoleAndMenu(ctx context.Context, roleID, menuID uint) (*model.RoleMenuPermission, error) {
	var row model.RoleMenuPermission
	if err := GetDB(ctx, r.db).Where("role_id = ? AND menu_id = ?", roleID, menuID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *roleMenuPermissionRepository) DeleteByRole(ctx context.Context, roleID uint) error {
	return GetDB(ctx, r.db).Where("role_id = ?", roleID).Delete(&model.RoleMenuPermission{}).Error
}

func (r *roleMenuPermissionRepository) BulkCreate(ctx context.Context, rows []model.RoleMenuPermission) error {
	if len(rows) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).CreateInBatches(rows, 200).Error
}
