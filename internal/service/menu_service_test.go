package service

import (
	"context"
	"testing"

	"backoffice/internal/apperr"
	"backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMenuFixture() (MenuService, *fakeMenus, *fakeCache) {
	menus := newFakeMenus(
		model.Menu{ID: 1, Title: "Property", SortOrder: 2, IsActive: true},
		model.Menu{ID: 2, Title: "Assets", URL: "/assets", ParentID: uintPtr(1), SortOrder: 1, IsActive: true},
		model.Menu{ID: 3, Title: "Units", URL: "/units", ParentID: uintPtr(2), SortOrder: 1, IsActive: false},
		model.Menu{ID: 4, Title: "Dashboard", URL: "/dashboard", SortOrder: 1, IsActive: true},
	)
	cache := &fakeCache{}
	return NewMenuService(&fakeTx{}, menus, &fakeAudit{}, cache), menus, cache
}

func TestMenuTreeIncludesInactiveAndSorts(t *testing.T) {
	svc, _, _ := newMenuFixture()

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, uint(4), tree[0].ID)
	assert.Equal(t, uint(1), tree[1].ID)
	require.Len(t, tree[1].Children, 1)
	require.Len(t, tree[1].Children[0].Children, 1)
	assert.False(t, tree[1].Children[0].Children[0].IsActive)
}

func TestMenuCreateValidatesParent(t *testing.T) {
	svc, _, cache := newMenuFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateMenuRequest{Title: "Orphan", ParentID: uintPtr(99)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	m, err := svc.Create(ctx, 1, CreateMenuRequest{Title: "Tenants", URL: "/tenants", ParentID: uintPtr(1)})
	require.NoError(t, err)
	assert.True(t, m.IsActive)
	assert.Equal(t, []uint{0}, cache.invalidated)
}

func TestMenuUpdateRejectsCycles(t *testing.T) {
	svc, _, _ := newMenuFixture()
	ctx := context.Background()

	_, err := svc.Update(ctx, 1, 1, UpdateMenuRequest{ParentID: uintPtr(3)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, 1, 2, UpdateMenuRequest{ParentID: uintPtr(2)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	m, err := svc.Update(ctx, 1, 3, UpdateMenuRequest{ParentID: uintPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, m.ParentID)
}

func TestMenuDeleteWithChildrenConflicts(t *testing.T) {
	svc, menus, _ := newMenuFixture()
	ctx := context.Background()

	err := svc.Delete(ctx, 1, 1)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, svc.Delete(ctx, 1, 3))
	_, err = menus.FindByID(ctx, 3)
	assert.Error(t, err)

	err = svc.Delete(ctx, 1, 3)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
