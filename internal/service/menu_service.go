package service

import (
	"context"
	"sort"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

type CreateMenuRequest struct {
	Title      string `json:"title" binding:"required,max=100"`
	URL        string `json:"url" binding:"max=255"`
	Icon       string `json:"icon"`
	ParentID   *uint  `json:"parent_id"`
	Order      int    `json:"order"`
	IsActive   *bool  `json:"is_active"`
	CanView    bool   `json:"can_view"`
	CanAdd     bool   `json:"can_add"`
	CanEdit    bool   `json:"can_edit"`
	CanDelete  bool   `json:"can_delete"`
	CanConfirm bool   `json:"can_confirm"`
}

// UpdateMenuRequest is a partial update. parent_id 0 detaches the menu to the top level.
type UpdateMenuRequest struct {
	Title      *string `json:"title" binding:"omitempty,max=100"`
	URL        *string `json:"url" binding:"omitempty,max=255"`
	Icon       *string `json:"icon"`
	ParentID   *uint   `json:"parent_id"`
	Order      *int    `json:"order"`
	IsActive   *bool   `json:"is_active"`
	CanView    *bool   `json:"can_view"`
	CanAdd     *bool   `json:"can_add"`
	CanEdit    *bool   `json:"can_edit"`
	CanDelete  *bool   `json:"can_delete"`
	CanConfirm *bool   `json:"can_confirm"`
}

// MenuTreeNode is the admin view of the full menu tree, inactive entries included
type MenuTreeNode struct {
	model.Menu
	Children []MenuTreeNode `json:"children"`
}

type MenuService interface {
	List(ctx context.Context) ([]model.Menu, error)
	Tree(ctx context.Context) ([]MenuTreeNode, error)
	Get(ctx context.Context, id uint) (*model.Menu, error)
	Create(ctx context.Context, actorID uint, req CreateMenuRequest) (*model.Menu, error)
	Update(ctx context.Context, actorID, id uint, req UpdateMenuRequest) (*model.Menu, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type menuService struct {
	txManager repository.TransactionManager
	menus     repository.MenuRepository
	audit     auditor
	cache     PermissionCache
}

func NewMenuService(txManager repository.TransactionManager, menus repository.MenuRepository, auditRepo repository.AuditRepository, cache PermissionCache) MenuService {
	return &menuService{txManager: txManager, menus: menus, audit: auditor{repo: auditRepo}, cache: cache}
}

func (s *menuService) List(ctx context.Context) ([]model.Menu, error) {
	menus, err := s.menus.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list menus")
	}
	return menus, nil
}

func (s *menuService) Tree(ctx context.Context) ([]MenuTreeNode, error) {
	menus, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildMenuTree(menus), nil
}

func (s *menuService) Get(ctx context.Context, id uint) (*model.Menu, error) {
	m, err := s.menus.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Menu not found")
	}
	return m, nil
}

func (s *menuService) Create(ctx context.Context, actorID uint, req CreateMenuRequest) (*model.Menu, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("Menu title is required")
	}
	if req.ParentID != nil && *req.ParentID == 0 {
		req.ParentID = nil
	}
	if req.ParentID != nil {
		if _, err := s.menus.FindByID(ctx, *req.ParentID); err != nil {
			return nil, validationIfMissing(err, "Parent menu not found")
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	m := model.Menu{
		Title:      strings.TrimSpace(req.Title),
		URL:        req.URL,
		Icon:       req.Icon,
		ParentID:   req.ParentID,
		SortOrder:  req.Order,
		IsActive:   active,
		CanView:    req.CanView,
		CanAdd:     req.CanAdd,
		CanEdit:    req.CanEdit,
		CanDelete:  req.CanDelete,
		CanConfirm: req.CanConfirm,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.menus.Create(txCtx, &m); err != nil {
			return apperr.Internal(err, "failed to create menu")
		}
		return s.audit.record(txCtx, actorID, model.ActionCreateMenu, "menu", m.ID, req)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(0)
	return &m, nil
}

func (s *menuService) Update(ctx context.Context, actorID, id uint, req UpdateMenuRequest) (*model.Menu, error) {
	m, err := s.menus.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Menu not found")
	}

	if req.ParentID != nil {
		if *req.ParentID == 0 {
			m.ParentID = nil
		} else {
			if err := s.ensureNoCycle(ctx, id, *req.ParentID); err != nil {
				return nil, err
			}
			parent := *req.ParentID
			m.ParentID = &parent
		}
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperr.Validation("Menu title cannot be empty")
		}
		m.Title = strings.TrimSpace(*req.Title)
	}
	setIf(&m.URL, req.URL)
	setIf(&m.Icon, req.Icon)
	setIf(&m.SortOrder, req.Order)
	setIf(&m.IsActive, req.IsActive)
	setIf(&m.CanView, req.CanView)
	setIf(&m.CanAdd, req.CanAdd)
	setIf(&m.CanEdit, req.CanEdit)
	setIf(&m.CanDelete, req.CanDelete)
	setIf(&m.CanConfirm, req.CanConfirm)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.menus.Update(txCtx, m); err != nil {
			return apperr.Internal(err, "failed to update menu")
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateMenu, "menu", m.ID, req)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(0)
	return m, nil
}

func (s *menuService) Delete(ctx context.Context, actorID, id uint) error {
	if _, err := s.menus.FindByID(ctx, id); err != nil {
		return apperr.FromRepo(err, "Menu not found")
	}
	n, err := s.menus.CountChildren(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to count child menus")
	}
	if n > 0 {
		return apperr.Conflict("Menu has %d child menus; move or delete them first", n)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.menus.Delete(txCtx, id); err != nil {
			return apperr.FromRepo(err, "Menu not found")
		}
		return s.audit.record(txCtx, actorID, model.ActionDeleteMenu, "menu", id, nil)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(0)
	return nil
}

// ensureNoCycle walks up from parentID and fails if it reaches id.
func (s *menuService) ensureNoCycle(ctx context.Context, id, parentID uint) error {
	if id == parentID {
		return apperr.Validation("A menu cannot be its own parent")
	}
	menus, err := s.menus.ListAll(ctx)
	if err != nil {
		return apperr.Internal(err, "failed to load menus")
	}
	parentOf := make(map[uint]*uint, len(menus))
	for _, m := range menus {
		parentOf[m.ID] = m.ParentID
	}
	if _, ok := parentOf[parentID]; !ok {
		return apperr.Validation("Parent menu not found")
	}

	seen := map[uint]bool{}
	for cur := &parentID; cur != nil; cur = parentOf[*cur] {
		if *cur == id {
			return apperr.Validation("Menu %d cannot be moved under its own descendant", id)
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return nil
}

func buildMenuTree(menus []model.Menu) []MenuTreeNode {
	byID := make(map[uint]bool, len(menus))
	for _, m := range menus {
		byID[m.ID] = true
	}
	children := make(map[uint][]model.Menu)
	var roots []model.Menu
	for _, m := range menus {
		if m.ParentID == nil || !byID[*m.ParentID] || *m.ParentID == m.ID {
			roots = append(roots, m)
			continue
		}
		children[*m.ParentID] = append(children[*m.ParentID], m)
	}

	visited := make(map[uint]bool, len(menus))
	var build func(level []model.Menu) []MenuTreeNode
	build = func(level []model.Menu) []MenuTreeNode {
		sort.SliceStable(level, func(i, j int) bool {
			if level[i].SortOrder != level[j].SortOrder {
				return level[i].SortOrder < level[j].SortOrder
			}
			return level[i].ID < level[j].ID
		})
		out := make([]MenuTreeNode, 0, len(level))
		for _, m := range level {
			if visited[m.ID] {
				continue
			}
			visited[m.ID] = true
			out = append(out, MenuTreeNode{Menu: m, Children: build(children[m.ID])})
		}
		return out
	}
	return build(roots)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// validationIfMissing turns a not-found lookup of a referenced row into a 400
func validationIfMissing(err error, msg string) error {
	if apperr.Is(apperr.FromRepo(err, msg), apperr.KindNotFound) {
		return apperr.Validation("%s", msg)
	}
	return apperr.FromRepo(err, msg)
}
