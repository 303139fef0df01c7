package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func uintPtr(v uint) *uint { return &v }

type accessFixture struct {
	svc    *accessService
	grants *fakeGrants
	menus  *fakeMenus
}

// Menus: Admin(2) > Users(3) > Audit(5); Dashboard(1); Roles(4) under Admin.
func newAccessFixture(t *testing.T, ttl time.Duration) accessFixture {
	t.Helper()
	role := uint(7)
	users := newFakeUsers(
		model.User{ID: 1, Email: "ops@example.com", RoleID: &role, Status: model.UserStatusActive},
		model.User{ID: 2, Email: "norole@example.com", Status: model.UserStatusActive},
	)
	roles := newFakeRoles(model.Role{ID: role, Name: "operator"})
	menus := newFakeMenus(
		model.Menu{ID: 1, Title: "Dashboard", URL: "/dashboard", SortOrder: 1, IsActive: true},
		model.Menu{ID: 2, Title: "Admin", URL: "", SortOrder: 2, IsActive: true},
		model.Menu{ID: 3, Title: "Users", URL: "/users", ParentID: uintPtr(2), SortOrder: 1, IsActive: true},
		model.Menu{ID: 4, Title: "Roles", URL: "/roles", ParentID: uintPtr(2), SortOrder: 2, IsActive: true},
		model.Menu{ID: 5, Title: "Audit", URL: "/audit", ParentID: uintPtr(3), SortOrder: 1, IsActive: true},
		model.Menu{ID: 6, Title: "Legacy", URL: "/legacy", SortOrder: 9, IsActive: false},
	)
	grants := &fakeGrants{rows: []model.RoleMenuPermission{
		{RoleID: role, MenuID: 5, CanView: true, CanUpdate: true},
		{RoleID: role, MenuID: 1, CanView: true},
		{RoleID: role, MenuID: 6, CanView: true, CanDelete: true},
	}}
	svc := NewAccessService(users, roles, menus, grants, ttl, zap.NewNop()).(*accessService)
	return accessFixture{svc: svc, grants: grants, menus: menus}
}

func TestResolveAccessibleMenusSynthesizesAncestors(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)

	forest, err := fx.svc.ResolveAccessibleMenus(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, forest, 2)

	assert.Equal(t, uint(1), forest[0].ID)
	assert.False(t, forest[0].Synthesized)

	admin := forest[1]
	assert.Equal(t, uint(2), admin.ID)
	assert.True(t, admin.Synthesized)
	assert.True(t, admin.CanView)
	assert.False(t, admin.CanUpdate)
	require.Len(t, admin.Children, 1)

	users := admin.Children[0]
	assert.Equal(t, uint(3), users.ID)
	assert.True(t, users.Synthesized)
	require.Len(t, users.Children, 1)
	assert.Equal(t, uint(5), users.Children[0].ID)
	assert.True(t, users.Children[0].CanUpdate)
}

func TestResolveFlatPermissionsFollowsForest(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)

	flat, err := fx.svc.ResolveFlatPermissions(context.Background(), 1)
	require.NoError(t, err)

	ids := make([]uint, 0, len(flat))
	for _, p := range flat {
		ids = append(ids, p.MenuID)
	}
	assert.Equal(t, []uint{1, 2, 3, 5}, ids)
}

func TestResolveAccessibleMenusUserWithoutRole(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)

	forest, err := fx.svc.ResolveAccessibleMenus(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestResolveAccessibleMenusUnknownUser(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)

	_, err := fx.svc.ResolveAccessibleMenus(context.Background(), 404)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCheckAccessUsesExplicitGrantsOnly(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)
	ctx := context.Background()

	assert.True(t, fx.svc.CheckAccess(ctx, 1, 5, model.PermUpdate))
	assert.False(t, fx.svc.CheckAccess(ctx, 1, 5, model.PermDelete))
	// synthesized ancestors grant navigation, not actions
	assert.False(t, fx.svc.CheckAccess(ctx, 1, 2, model.PermView))
	// grant rows on inactive menus are ignored
	assert.False(t, fx.svc.CheckAccess(ctx, 1, 6, model.PermDelete))
}

func TestCheckAccessFailsClosed(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)
	ctx := context.Background()

	assert.False(t, fx.svc.CheckAccess(ctx, 404, 1, model.PermView))
	assert.False(t, fx.svc.CheckAccess(ctx, 2, 1, model.PermView))
	assert.False(t, fx.svc.CheckAccess(ctx, 1, 1, model.PermissionKind(99)))
}

func TestCheckAccessByURL(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)
	ctx := context.Background()

	assert.True(t, fx.svc.CheckAccessByURL(ctx, 1, "/audit", model.PermView))
	assert.False(t, fx.svc.CheckAccessByURL(ctx, 1, "/roles", model.PermView))
	assert.False(t, fx.svc.CheckAccessByURL(ctx, 1, "/legacy", model.PermView))
	assert.False(t, fx.svc.CheckAccessByURL(ctx, 1, "/missing", model.PermView))
}

func TestSnapshotCacheAndInvalidate(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)
	ctx := context.Background()

	fx.svc.CheckAccess(ctx, 1, 1, model.PermView)
	fx.svc.CheckAccess(ctx, 1, 1, model.PermView)
	assert.Equal(t, 1, fx.grants.listCalls)

	fx.grants.rows = append(fx.grants.rows, model.RoleMenuPermission{RoleID: 7, MenuID: 4, CanView: true})
	assert.False(t, fx.svc.CheckAccess(ctx, 1, 4, model.PermView))

	fx.svc.Invalidate(7)
	assert.True(t, fx.svc.CheckAccess(ctx, 1, 4, model.PermView))
	assert.Equal(t, 2, fx.grants.listCalls)

	fx.svc.Invalidate(0)
	fx.svc.CheckAccess(ctx, 1, 4, model.PermView)
	assert.Equal(t, 3, fx.grants.listCalls)
}

func TestInvalidateDuringLoadDiscardsSnapshot(t *testing.T) {
	for name, roleID := range map[string]uint{"role": 7, "all": 0} {
		t.Run(name, func(t *testing.T) {
			fx := newAccessFixture(t, time.Minute)
			ctx := context.Background()

			// a grant change commits while the first load is in flight
			fx.grants.onList = func() {
				fx.grants.onList = nil
				fx.grants.rows = append(fx.grants.rows, model.RoleMenuPermission{RoleID: 7, MenuID: 4, CanView: true})
				fx.svc.Invalidate(roleID)
			}

			assert.False(t, fx.svc.CheckAccess(ctx, 1, 4, model.PermView))
			assert.True(t, fx.svc.CheckAccess(ctx, 1, 4, model.PermView))
			assert.Equal(t, 2, fx.grants.listCalls)

			fx.svc.CheckAccess(ctx, 1, 4, model.PermView)
			assert.Equal(t, 2, fx.grants.listCalls)
		})
	}
}

func TestSnapshotExpires(t *testing.T) {
	fx := newAccessFixture(t, time.Minute)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time { return now }

	fx.svc.CheckAccess(ctx, 1, 1, model.PermView)
	now = now.Add(2 * time.Minute)
	fx.svc.CheckAccess(ctx, 1, 1, model.PermView)
	assert.Equal(t, 2, fx.grants.listCalls)
}

func TestZeroTTLDisablesCache(t *testing.T) {
	fx := newAccessFixture(t, 0)
	ctx := context.Background()

	fx.svc.CheckAccess(ctx, 1, 1, model.PermView)
	fx.svc.CheckAccess(ctx, 1, 1, model.PermView)
	assert.Equal(t, 2, fx.grants.listCalls)
}
