package service

import (
	"context"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"
)

type CreateTaskGroupRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	DaysOfWeek  []int  `json:"days_of_week" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsActive    *bool  `json:"is_active"`
	UserIDs     []uint `json:"user_ids"`
}

type UpdateTaskGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	DaysOfWeek  *[]int  `json:"days_of_week"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsActive    *bool   `json:"is_active"`
	// UserIDs replaces the member list when present.
	UserIDs *[]uint `json:"user_ids"`
}

type CreateTaskRequest struct {
	TaskGroupID uint   `json:"task_group_id" binding:"required"`
	AssetID     *uint  `json:"asset_id"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	TimeOfDay   string `json:"time_of_day" binding:"required"`
	Order       int    `json:"order"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateTaskRequest struct {
	AssetID     *uint   `json:"asset_id"`
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	TimeOfDay   *string `json:"time_of_day"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

type TaskGroupService interface {
	List(ctx context.Context, search string, p pagination.Params) ([]model.TaskGroup, int64, error)
	Get(ctx context.Context, id uint) (*model.TaskGroup, error)
	Create(ctx context.Context, req CreateTaskGroupRequest) (*model.TaskGroup, error)
	Update(ctx context.Context, id uint, req UpdateTaskGroupRequest) (*model.TaskGroup, error)
	Delete(ctx context.Context, id uint) error
}

type TaskService interface {
	List(ctx context.Context, groupID *uint, p pagination.Params) ([]model.Task, int64, error)
	Get(ctx context.Context, id uint) (*model.Task, error)
	Create(ctx context.Context, req CreateTaskRequest) (*model.Task, error)
	Update(ctx context.Context, id uint, req UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, id uint) error
}

type taskGroupService struct {
	txManager repository.TransactionManager
	groups    repository.TaskGroupRepository
	users     repository.UserRepository
}

func NewTaskGroupService(txManager repository.TransactionManager, groups repository.TaskGroupRepository, users repository.UserRepository) TaskGroupService {
	return &taskGroupService{txManager: txManager, groups: groups, users: users}
}

func (s *taskGroupService) List(ctx context.Context, search string, p pagination.Params) ([]model.TaskGroup, int64, error) {
	items, total, err := s.groups.List(ctx, search, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list task groups")
	}
	return items, total, nil
}

func (s *taskGroupService) Get(ctx context.Context, id uint) (*model.TaskGroup, error) {
	g, err := s.groups.FindByIDWithMembers(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Task group not found")
	}
	return g, nil
}

func (s *taskGroupService) Create(ctx context.Context, req CreateTaskGroupRequest) (*model.TaskGroup, error) {
	days, err := parseWeekdays(req.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	g := model.TaskGroup{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		DaysOfWeek:  days,
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := validateWindow(g.StartTime, g.EndTime); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groups.Create(txCtx, &g); err != nil {
			return apperr.Internal(err, "failed to create task group")
		}
		return s.replaceMembers(txCtx, &g, req.UserIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, g.ID)
}

func (s *taskGroupService) Update(ctx context.Context, id uint, req UpdateTaskGroupRequest) (*model.TaskGroup, error) {
	g, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Task group not found")
	}
	setIf(&g.Name, req.Name)
	setIf(&g.Description, req.Description)
	setIf(&g.StartTime, req.StartTime)
	setIf(&g.EndTime, req.EndTime)
	setIf(&g.IsActive, req.IsActive)
	if req.DaysOfWeek != nil {
		days, err := parseWeekdays(*req.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		g.DaysOfWeek = days
	}
	if err := validateWindow(g.StartTime, g.EndTime); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groups.Update(txCtx, g); err != nil {
			return apperr.Internal(err, "failed to update task group")
		}
		if req.UserIDs == nil {
			return nil
		}
		return s.replaceMembers(txCtx, g, *req.UserIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *taskGroupService) Delete(ctx context.Context, id uint) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		return apperr.FromRepo(err, "Task group not found")
	}
	return nil
}

func (s *taskGroupService) replaceMembers(txCtx context.Context, g *model.TaskGroup, ids []uint) error {
	ids = uniqueIDs(ids)
	users, err := s.users.FindByIDs(txCtx, ids)
	if err != nil {
		return apperr.Internal(err, "failed to load users")
	}
	if len(users) != len(ids) {
		return apperr.Validation("user_ids contains unknown users")
	}
	if err := s.groups.ReplaceUsers(txCtx, g, users); err != nil {
		return apperr.Internal(err, "failed to update task group members")
	}
	return nil
}

func validateWindow(start, end string) error {
	from, err := parseClock("start_time", start)
	if err != nil {
		return err
	}
	to, err := parseClock("end_time", end)
	if err != nil {
		return err
	}
	if to <= from {
		return apperr.Validation("end_time must be after start_time")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type taskService struct {
	tasks  repository.TaskRepository
	groups repository.TaskGroupRepository
}

func NewTaskService(tasks repository.TaskRepository, groups repository.TaskGroupRepository) TaskService {
	return &taskService{tasks: tasks, groups: groups}
}

func (s *taskService) List(ctx context.Context, groupID *uint, p pagination.Params) ([]model.Task, int64, error) {
	items, total, err := s.tasks.List(ctx, groupID, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list tasks")
	}
	return items, total, nil
}

func (s *taskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Task not found")
	}
	return t, nil
}

func (s *taskService) Create(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	if _, err := parseClock("time_of_day", req.TimeOfDay); err != nil {
		return nil, err
	}
	if _, err := s.groups.FindByID(ctx, req.TaskGroupID); err != nil {
		return nil, validationIfMissing(err, "Task group not found")
	}
	t := model.Task{
		TaskGroupID: req.TaskGroupID,
		AssetID:     req.AssetID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TimeOfDay:   strings.TrimSpace(req.TimeOfDay),
		SortOrder:   req.Order,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.tasks.Create(ctx, &t); err != nil {
		return nil, apperr.Internal(err, "failed to create task")
	}
	return &t, nil
}

func (s *taskService) Update(ctx context.Context, id uint, req UpdateTaskRequest) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Task not found")
	}
	if req.TimeOfDay != nil {
		if _, err := parseClock("time_of_day", *req.TimeOfDay); err != nil {
			return nil, err
		}
	}
	if req.AssetID != nil {
		t.AssetID = req.AssetID
	}
	setIf(&t.Title, req.Title)
	setIf(&t.Description, req.Description)
	setIf(&t.TimeOfDay, req.TimeOfDay)
	setIf(&t.SortOrder, req.Order)
	setIf(&t.IsActive, req.IsActive)
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, apperr.Internal(err, "failed to update task")
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, id uint) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return apperr.FromRepo(err, "Task not found")
	}
	return nil
}
