package repository

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleMenuPermissionListByRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleMenuPermissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "role_id", "menu_id", "can_view", "can_create", "can_update", "can_delete", "can_confirm"}).
		AddRow(1, 3, 10, true, false, false, false, false).
		AddRow(2, 3, 11, true, true, true, false, false)
	mock.ExpectQuery(`SELECT \* FROM "role_menu_permissions" WHERE role_id = \$1 ORDER BY menu_id asc`).
		WithArgs(3).
		WillReturnRows(rows)

	got, err := repo.ListByRole(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(11), got[1].MenuID)
	assert.True(t, got[1].CanUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleMenuPermissionReplaceInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleMenuPermissionRepository(db)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "role_menu_permissions" WHERE role_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectQuery(`INSERT INTO "role_menu_permissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21).AddRow(22))
	mock.ExpectCommit()

	rows := []model.RoleMenuPermission{
		{RoleID: 3, MenuID: 10, CanView: true},
		{RoleID: 3, MenuID: 11, CanView: true, CanCreate: true},
	}
	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		if err := repo.DeleteByRole(txCtx, 3); err != nil {
			return err
		}
		return repo.BulkCreate(txCtx, rows)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleMenuPermissionReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleMenuPermissionRepository(db)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "role_menu_permissions" WHERE role_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectQuery(`INSERT INTO "role_menu_permissions"`).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		if err := repo.DeleteByRole(txCtx, 3); err != nil {
			return err
		}
		return repo.BulkCreate(txCtx, []model.RoleMenuPermission{{RoleID: 3, MenuID: 10, CanView: true}})
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleMenuPermissionBulkCreateEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)

	require.NoError(t, NewRoleMenuPermissionRepository(db).BulkCreate(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxJoinsEnclosingTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(outer context.Context) error {
		return tm.RunInTx(outer, func(inner context.Context) error {
			assert.Equal(t, outer, inner)
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
