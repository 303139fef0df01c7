package service

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/permission"
	"backoffice/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type MenuPermissionInput struct {
	MenuID     uint `json:"menu_id" binding:"required"`
	CanView    bool `json:"can_view"`
	CanCreate  bool `json:"can_create"`
	CanUpdate  bool `json:"can_update"`
	CanDelete  bool `json:"can_delete"`
	CanConfirm bool `json:"can_confirm"`
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	// nil leaves the role without grants; a list replaces them
	MenuPermissions *[]MenuPermissionInput `json:"menu_permissions"`
}

type UpdateRoleRequest struct {
	Name            *string                `json:"name" binding:"omitempty,max=50"`
	Description     *string                `json:"description"`
	Level           *int                   `json:"level"`
	MenuPermissions *[]MenuPermissionInput `json:"menu_permissions"`
}

type SetMenuPermissionsRequest struct {
	Permissions []MenuPermissionInput `json:"permissions" binding:"required,dive"`
}

type RoleResponse struct {
	ID              uint                    `json:"id"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	Level           int                     `json:"level"`
	IsSystem        bool                    `json:"is_system"`
	MenuPermissions []permission.Permission `json:"menu_permissions,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id uint) (*RoleResponse, error)
	CreateRole(ctx context.Context, actorID uint, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, actorID, id uint, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, actorID, id uint) error
	GetMenuPermissions(ctx context.Context, roleID uint) ([]permission.Permission, error)
	// SetMenuPermissions replaces the role's whole grant set in one transaction.
	SetMenuPermissions(ctx context.Context, actorID, roleID uint, perms []MenuPermissionInput) ([]permission.Permission, error)
}

type roleService struct {
	txManager repository.TransactionManager
	roles     repository.RoleRepository
	menus     repository.MenuRepository
	grants    repository.RoleMenuPermissionRepository
	audit     auditor
	cache     PermissionCache
	notify    Notifier
}

func NewRoleService(
	txManager repository.TransactionManager,
	roles repository.RoleRepository,
	menus repository.MenuRepository,
	grants repository.RoleMenuPermissionRepository,
	auditRepo repository.AuditRepository,
	cache PermissionCache,
	notify Notifier,
) RoleService {
	return &roleService{
		txManager: txManager,
		roles:     roles,
		menus:     menus,
		grants:    grants,
		audit:     auditor{repo: auditRepo},
		cache:     cache,
		notify:    notifierOrNop(notify),
	}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch roles")
	}
	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r, nil))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*RoleResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Role not found")
	}
	perms, err := s.GetMenuPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(*role, perms)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, actorID uint, req CreateRoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("Role name is required")
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	if req.MenuPermissions != nil {
		if err := s.validateInputs(ctx, *req.MenuPermissions); err != nil {
			return nil, err
		}
	}

	role := model.Role{Name: name, Description: req.Description, Level: req.Level}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Create(txCtx, &role); err != nil {
			return apperr.Internal(err, "failed to create role")
		}
		if req.MenuPermissions != nil {
			if err := s.replace(txCtx, role.ID, *req.MenuPermissions); err != nil {
				return err
			}
		}
		return s.audit.record(txCtx, actorID, model.ActionCreateRole, "role", role.ID, req)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(role.ID)
	if req.MenuPermissions != nil {
		s.notify.Publish(EventPermissionsChanged, map[string]uint{"role_id": role.ID})
	}
	return s.GetRole(ctx, role.ID)
}

func (s *roleService) UpdateRole(ctx context.Context, actorID, id uint, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Role not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("Role name cannot be empty")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		role.Name = name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Level != nil {
		role.Level = *req.Level
	}
	if req.MenuPermissions != nil {
		if err := s.validateInputs(ctx, *req.MenuPermissions); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Update(txCtx, role); err != nil {
			return apperr.Internal(err, "failed to update role")
		}
		if req.MenuPermissions != nil {
			if err := s.replace(txCtx, role.ID, *req.MenuPermissions); err != nil {
				return err
			}
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateRole, "role", role.ID, req)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(role.ID)
	if req.MenuPermissions != nil {
		s.notify.Publish(EventPermissionsChanged, map[string]uint{"role_id": role.ID})
	}
	return s.GetRole(ctx, role.ID)
}

func (s *roleService) DeleteRole(ctx context.Context, actorID, id uint) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return apperr.FromRepo(err, "Role not found")
	}
	if role.IsSystem {
		return apperr.Forbidden("System roles cannot be deleted")
	}

	// Grant rows go with the role through the ON DELETE CASCADE foreign key.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Delete(txCtx, id); err != nil {
			return apperr.FromRepo(err, "Role not found")
		}
		return s.audit.record(txCtx, actorID, model.ActionDeleteRole, "role", id, map[string]string{"name": role.Name})
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(id)
	return nil
}

func (s *roleService) GetMenuPermissions(ctx context.Context, roleID uint) ([]permission.Permission, error) {
	rows, err := s.grants.ListByRole(ctx, roleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load menu permissions")
	}
	out := make([]permission.Permission, 0, len(rows))
	for _, r := range rows {
		out = append(out, permission.Permission{MenuID: r.MenuID, Flags: permission.FlagsOf(r)})
	}
	return out, nil
}

func (s *roleService) SetMenuPermissions(ctx context.Context, actorID, roleID uint, perms []MenuPermissionInput) ([]permission.Permission, error) {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, apperr.FromRepo(err, "Role not found")
	}
	if err := s.validateInputs(ctx, perms); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.replace(txCtx, roleID, perms); err != nil {
			return err
		}
		return s.audit.record(txCtx, actorID, model.ActionSetMenuPermissions, "role", roleID, perms)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(roleID)
	s.notify.Publish(EventPermissionsChanged, map[string]uint{"role_id": roleID})
	return s.GetMenuPermissions(ctx, roleID)
}

// replace deletes every grant of the role and inserts perms; callers hold the transaction.
func (s *roleService) replace(txCtx context.Context, roleID uint, perms []MenuPermissionInput) error {
	if err := s.grants.DeleteByRole(txCtx, roleID); err != nil {
		return apperr.Internal(err, "failed to clear menu permissions")
	}
	rows := make([]model.RoleMenuPermission, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, model.RoleMenuPermission{
			RoleID:     roleID,
			MenuID:     p.MenuID,
			CanView:    p.CanView,
			CanCreate:  p.CanCreate,
			CanUpdate:  p.CanUpdate,
			CanDelete:  p.CanDelete,
			CanConfirm: p.CanConfirm,
		})
	}
	if err := s.grants.BulkCreate(txCtx, rows); err != nil {
		return apperr.Internal(err, "failed to save menu permissions")
	}
	return nil
}

// validateInputs rejects duplicate or unknown menus before any write happens
func (s *roleService) validateInputs(ctx context.Context, perms []MenuPermissionInput) error {
	if len(perms) == 0 {
		return nil
	}
	menus, err := s.menus.ListAll(ctx)
	if err != nil {
		return apperr.Internal(err, "failed to load menus")
	}
	known := make(map[uint]bool, len(menus))
	for _, m := range menus {
		known[m.ID] = true
	}
	seen := make(map[uint]bool, len(perms))
	for _, p := range perms {
		if seen[p.MenuID] {
			return apperr.Validation("Duplicate menu_id %d in permissions", p.MenuID)
		}
		seen[p.MenuID] = true
		if !known[p.MenuID] {
			return apperr.Validation("Menu %d does not exist", p.MenuID)
		}
	}
	return nil
}

func (s *roleService) ensureNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.roles.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.Internal(err, "failed to check role name")
	}
	if existing.ID != selfID {
		return apperr.Conflict("Role name already exists")
	}
	return nil
}

func toRoleResponse(r model.Role, perms []permission.Permission) RoleResponse {
	return RoleResponse{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Level:           r.Level,
		IsSystem:        r.IsSystem,
		MenuPermissions: perms,
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
