package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userTaskFixture struct {
	svc       *userTaskService
	userTasks *fakeUserTasks
	notify    *fakeNotifier
	issued    *fakeCounter
	audit     *fakeAudit
}

func newUserTaskFixture() userTaskFixture {
	crew := []model.User{{ID: 10}, {ID: 11}}
	groups := &fakeTaskGroups{groups: []model.TaskGroup{
		{
			ID: 1, Name: "Morning rounds", DaysOfWeek: "1,3", StartTime: "08:00", EndTime: "12:00", IsActive: true,
			Users: crew,
			Tasks: []model.Task{
				{ID: 100, TimeOfDay: "09:00", IsActive: true},
				{ID: 101, TimeOfDay: "13:00", IsActive: true},
				{ID: 102, TimeOfDay: "10:00", IsActive: false},
			},
		},
		{ID: 2, Name: "Tuesday", DaysOfWeek: "2", StartTime: "08:00", EndTime: "12:00", IsActive: true, Users: crew,
			Tasks: []model.Task{{ID: 200, TimeOfDay: "09:00", IsActive: true}}},
		{ID: 3, Name: "Retired", DaysOfWeek: "1", StartTime: "08:00", EndTime: "12:00", IsActive: false, Users: crew,
			Tasks: []model.Task{{ID: 300, TimeOfDay: "09:00", IsActive: true}}},
	}}
	fx := userTaskFixture{
		userTasks: &fakeUserTasks{},
		notify:    &fakeNotifier{},
		issued:    &fakeCounter{},
		audit:     &fakeAudit{},
	}
	fx.svc = NewUserTaskService(&fakeTx{}, groups, fx.userTasks, fx.audit, fx.notify, fx.issued).(*userTaskService)
	return fx
}

// 2026-03-02 is a Monday
func TestGenerateUserTasksForWeekday(t *testing.T) {
	fx := newUserTaskFixture()

	res, err := fx.svc.Generate(context.Background(), 5, GenerateUserTasksRequest{Date: "2026-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 2, res.Created)

	require.Len(t, fx.userTasks.rows, 2)
	for _, ut := range fx.userTasks.rows {
		assert.Equal(t, uint(100), ut.TaskID)
		assert.Equal(t, "2026-03-02", ut.ScheduledDate)
		assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), ut.ScheduledAt)
		assert.Equal(t, model.UserTaskPending, ut.Status)
	}
	assert.Equal(t, 2.0, fx.issued.total)
	assert.Equal(t, []string{EventUserTasksGenerated}, fx.notify.events)
	assert.Equal(t, []string{model.ActionGenerateUserTasks}, fx.audit.actions())
}

func TestGenerateUserTasksTwiceConflicts(t *testing.T) {
	fx := newUserTaskFixture()
	ctx := context.Background()

	_, err := fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-02"})
	require.NoError(t, err)

	_, err = fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-02"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-02", TaskGroupID: uintPtr(1)})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, fx.userTasks.rows, 2)
}

func TestGenerateUserTasksForSingleGroup(t *testing.T) {
	fx := newUserTaskFixture()
	ctx := context.Background()

	_, err := fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-02", TaskGroupID: uintPtr(2)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-02", TaskGroupID: uintPtr(3)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-02", TaskGroupID: uintPtr(9)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	res, err := fx.svc.Generate(ctx, 5, GenerateUserTasksRequest{Date: "2026-03-03", TaskGroupID: uintPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
}

func TestGenerateUserTasksRejectsBadDate(t *testing.T) {
	fx := newUserTaskFixture()

	_, err := fx.svc.Generate(context.Background(), 5, GenerateUserTasksRequest{Date: "03/02/2026"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUserTaskUpdateStatus(t *testing.T) {
	fx := newUserTaskFixture()
	ctx := context.Background()
	fx.userTasks.rows = []model.UserTask{{ID: 1, UserID: 10, Status: model.UserTaskPending}}

	_, err := fx.svc.UpdateStatus(ctx, 11, 1, UpdateUserTaskStatusRequest{Status: "done"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = fx.svc.UpdateStatus(ctx, 10, 1, UpdateUserTaskStatusRequest{Status: "finished"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	ut, err := fx.svc.UpdateStatus(ctx, 10, 1, UpdateUserTaskStatusRequest{Status: "done", Notes: "all clear"})
	require.NoError(t, err)
	assert.Equal(t, model.UserTaskDone, ut.Status)
	assert.NotNil(t, ut.CompletedAt)

	ut, err = fx.svc.UpdateStatus(ctx, 10, 1, UpdateUserTaskStatusRequest{Status: "in_progress"})
	require.NoError(t, err)
	assert.Nil(t, ut.CompletedAt)
	assert.Equal(t, "all clear", ut.Notes)
}

func TestCompletionPercent(t *testing.T) {
	fx := newUserTaskFixture()
	fx.userTasks.completion = []repository.CompletionRow{
		{ScheduledDate: "2026-03-02", Total: 4, Done: 3},
		{ScheduledDate: "2026-03-03", Total: 3, Done: 1},
		{ScheduledDate: "2026-03-04", Total: 0, Done: 0},
	}

	days, err := fx.svc.Completion(context.Background(), "2026-03-02", "2026-03-04", nil)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 75.0, days[0].Percent)
	assert.Equal(t, 33.33, days[1].Percent)
	assert.Equal(t, 0.0, days[2].Percent)

	_, err = fx.svc.Completion(context.Background(), "2026-03-04", "2026-03-02", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
