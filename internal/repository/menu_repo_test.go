package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMenuListAllIsOneFlatQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "url", "parent_id", "sort_order", "is_active"}).
		AddRow(1, "Property", "/property", nil, 1, true).
		AddRow(2, "Assets", "/assets", 1, 1, true).
		AddRow(3, "Old", "/old", nil, 9, false)
	mock.ExpectQuery(`SELECT \* FROM "menus" ORDER BY sort_order asc, id asc`).WillReturnRows(rows)

	menus, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, menus, 3)
	assert.Nil(t, menus[0].ParentID)
	require.NotNil(t, menus[1].ParentID)
	assert.Equal(t, uint(1), *menus[1].ParentID)
	assert.False(t, menus[2].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuFindByURLNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "menus" WHERE .*url = \$1 AND is_active = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByURL(context.Background(), "/missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuDeleteMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	mock.ExpectExec(`DELETE FROM "menus" WHERE id = \$1`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuCountChildren(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMenuRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "menus" WHERE parent_id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountChildren(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
