package service

import (
	"context"
	"sync"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/permission"
	"backoffice/internal/repository"

	"go.uber.org/zap"
)

// PermissionCache is invalidated by writers of roles, menus and grants. roleID 0 drops every role.
type PermissionCache interface {
	Invalidate(roleID uint)
}

// AccessService answers what a user may see and do.
type AccessService interface {
	PermissionCache
	// ResolveAccessibleMenus returns the user's navigation forest. Fails with NotFound when the
	// user or its role does not exist; a user without a role gets an empty forest.
	ResolveAccessibleMenus(ctx context.Context, userID uint) ([]permission.Node, error)
	ResolveFlatPermissions(ctx context.Context, userID uint) ([]permission.Permission, error)
	// CheckAccess reports the flag from the role's grant row. Any failure yields false.
	CheckAccess(ctx context.Context, userID, menuID uint, kind model.PermissionKind) bool
	CheckAccessByURL(ctx context.Context, userID uint, url string, kind model.PermissionKind) bool
}

// snapshot is everything derived from one role's grants
type snapshot struct {
	forest    []permission.Node
	flat      []permission.Permission
	explicit  map[uint]permission.Flags
	menuByURL map[string]uint
	expiresAt time.Time
}

type accessService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	menus  repository.MenuRepository
	grants repository.RoleMenuPermissionRepository
	log    *zap.Logger

	cache sync.Map // roleID -> *snapshot
	ttl   time.Duration
	now   func() time.Time

	// generations guard against storing a snapshot loaded before an Invalidate
	mu    sync.Mutex
	epoch uint64
	gens  map[uint]uint64
}

func NewAccessService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	menus repository.MenuRepository,
	grants repository.RoleMenuPermissionRepository,
	ttl time.Duration,
	log *zap.Logger,
) AccessService {
	return &accessService{
		users:  users,
		roles:  roles,
		menus:  menus,
		grants: grants,
		log:    log.Named("access"),
		ttl:    ttl,
		now:    time.Now,
		gens:   make(map[uint]uint64),
	}
}

func (s *accessService) ResolveAccessibleMenus(ctx context.Context, userID uint) ([]permission.Node, error) {
	snap, err := s.snapshotForUser(ctx, userID)
	if err != nil || snap == nil {
		return []permission.Node{}, err
	}
	return snap.forest, nil
}

func (s *accessService) ResolveFlatPermissions(ctx context.Context, userID uint) ([]permission.Permission, error) {
	snap, err := s.snapshotForUser(ctx, userID)
	if err != nil || snap == nil {
		return []permission.Permission{}, err
	}
	return snap.flat, nil
}

func (s *accessService) CheckAccess(ctx context.Context, userID, menuID uint, kind model.PermissionKind) bool {
	snap, err := s.snapshotForUser(ctx, userID)
	if err != nil {
		s.log.Warn("access check failed closed", zap.Uint("user_id", userID), zap.Uint("menu_id", menuID), zap.Error(err))
		return false
	}
	if snap == nil {
		return false
	}
	return snap.explicit[menuID].Allows(kind)
}

func (s *accessService) CheckAccessByURL(ctx context.Context, userID uint, url string, kind model.PermissionKind) bool {
	snap, err := s.snapshotForUser(ctx, userID)
	if err != nil {
		s.log.Warn("access check failed closed", zap.Uint("user_id", userID), zap.String("url", url), zap.Error(err))
		return false
	}
	if snap == nil {
		return false
	}
	menuID, ok := snap.menuByURL[url]
	if !ok {
		return false
	}
	return snap.explicit[menuID].Allows(kind)
}

func (s *accessService) Invalidate(roleID uint) {
	s.mu.Lock()
	if roleID != 0 {
		s.gens[roleID]++
	} else {
		s.epoch++
	}
	s.mu.Unlock()

	if roleID != 0 {
		s.cache.Delete(roleID)
		return
	}
	s.cache.Range(func(key, _ interface{}) bool {
		s.cache.Delete(key)
		return true
	})
}

// snapshotForUser returns nil, nil for a user without a role.
func (s *accessService) snapshotForUser(ctx context.Context, userID uint) (*snapshot, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.FromRepo(err, "User not found")
	}
	if user.RoleID == nil {
		return nil, nil
	}
	return s.snapshotForRole(ctx, *user.RoleID)
}

func (s *accessService) snapshotForRole(ctx context.Context, roleID uint) (*snapshot, error) {
	if v, ok := s.cache.Load(roleID); ok {
		snap := v.(*snapshot)
		if s.now().Before(snap.expiresAt) {
			return snap, nil
		}
	}

	gen := s.generation(roleID)
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, apperr.FromRepo(err, "Role not found")
	}
	menus, err := s.menus.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load menus")
	}
	grants, err := s.grants.ListByRole(ctx, roleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load menu permissions")
	}

	snap := buildSnapshot(menus, grants)
	snap.expiresAt = s.now().Add(s.ttl)
	if s.ttl > 0 {
		s.mu.Lock()
		if s.epoch+s.gens[roleID] == gen {
			s.cache.Store(roleID, snap)
		}
		s.mu.Unlock()
	}
	return snap, nil
}

func (s *accessService) generation(roleID uint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch + s.gens[roleID]
}

func buildSnapshot(menus []model.Menu, grants []model.RoleMenuPermission) *snapshot {
	forest := permission.Resolve(menus, grants)
	snap := &snapshot{
		forest:    forest,
		flat:      permission.Flatten(forest),
		explicit:  make(map[uint]permission.Flags, len(grants)),
		menuByURL: make(map[string]uint),
	}

	active := make(map[uint]bool, len(menus))
	for _, m := range menus {
		if !m.IsActive {
			continue
		}
		active[m.ID] = true
		if m.URL == "" {
			continue
		}
		if cur, ok := snap.menuByURL[m.URL]; !ok || m.ID < cur {
			snap.menuByURL[m.URL] = m.ID
		}
	}
	for _, g := range grants {
		if active[g.MenuID] {
			snap.explicit[g.MenuID] = permission.FlagsOf(g)
		}
	}
	return snap
}
