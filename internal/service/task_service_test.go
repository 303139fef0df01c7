package service

import (
	"context"
	"testing"

	"backoffice/internal/apperr"
	"backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskGroupFixture() (*taskGroupService, *fakeTaskGroups) {
	groups := &fakeTaskGroups{}
	users := newFakeUsers(
		model.User{ID: 1, Name: "Ana", Status: model.UserStatusActive},
		model.User{ID: 2, Name: "Ben", Status: model.UserStatusActive},
	)
	return NewTaskGroupService(&fakeTx{}, groups, users).(*taskGroupService), groups
}

func TestCreateTaskGroupValidatesWeekdays(t *testing.T) {
	svc, groups := newTaskGroupFixture()
	ctx := context.Background()

	cases := map[string][]int{
		"empty":        {},
		"nil":          nil,
		"out of range": {1, 7},
		"negative":     {-1},
	}
	for name, days := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, CreateTaskGroupRequest{Name: "Night round", DaysOfWeek: days, StartTime: "22:00", EndTime: "23:00"})
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
	assert.Empty(t, groups.groups)
}

func TestCreateTaskGroup(t *testing.T) {
	svc, groups := newTaskGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, CreateTaskGroupRequest{
		Name:       "  Lobby check ",
		DaysOfWeek: []int{5, 1, 1},
		StartTime:  "08:00",
		EndTime:    "09:30",
		UserIDs:    []uint{2, 1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lobby check", g.Name)
	assert.Equal(t, "1,5", g.DaysOfWeek)
	assert.True(t, g.IsActive)
	assert.Len(t, g.Users, 2)
	assert.Len(t, groups.groups, 1)
}

func TestCreateTaskGroupRejectsBadWindowAndMembers(t *testing.T) {
	svc, _ := newTaskGroupFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTaskGroupRequest{Name: "A", DaysOfWeek: []int{1}, StartTime: "09:00", EndTime: "09:00"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, CreateTaskGroupRequest{Name: "A", DaysOfWeek: []int{1}, StartTime: "9am", EndTime: "10:00"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, CreateTaskGroupRequest{Name: "A", DaysOfWeek: []int{1}, StartTime: "09:00", EndTime: "10:00", UserIDs: []uint{1, 99}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateTaskGroupRejectsEmptyWeekdays(t *testing.T) {
	svc, groups := newTaskGroupFixture()
	groups.groups = []model.TaskGroup{{ID: 1, Name: "Lobby", DaysOfWeek: "1", StartTime: "08:00", EndTime: "09:00", IsActive: true}}

	empty := []int{}
	_, err := svc.Update(context.Background(), 1, UpdateTaskGroupRequest{DaysOfWeek: &empty})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "1", groups.groups[0].DaysOfWeek)

	_, err = svc.Update(context.Background(), 404, UpdateTaskGroupRequest{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateTaskNeedsExistingGroup(t *testing.T) {
	groups := &fakeTaskGroups{groups: []model.TaskGroup{{ID: 1, Name: "Lobby"}}}
	svc := NewTaskService(nil, groups)

	_, err := svc.Create(context.Background(), CreateTaskRequest{TaskGroupID: 2, Title: "Check doors", TimeOfDay: "08:15"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(context.Background(), CreateTaskRequest{TaskGroupID: 1, Title: "Check doors", TimeOfDay: "8:15pm"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
