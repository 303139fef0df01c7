package repository

import (
	"context"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type TaskGroupRepository interface {
	Create(ctx context.Context, group *model.TaskGroup) error
	Update(ctx context.Context, group *model.TaskGroup) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.TaskGroup, error)
	FindByIDWithMembers(ctx context.Context, id uint) (*model.TaskGroup, error)
	List(ctx context.Context, search string, p pagination.Params) ([]model.TaskGroup, int64, error)
	ListActiveWithMembers(ctx context.Context) ([]model.TaskGroup, error)
	ReplaceUsers(ctx context.Context, group *model.TaskGroup, users []model.User) error
}

type taskGroupRepository struct {
	crud[model.TaskGroup]
}

func NewTaskGroupRepository(db *gorm.DB) TaskGroupRepository {
	return &taskGroupRepository{crud[model.TaskGroup]{db: db}}
}

func activeTasks(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("time_of_day asc, sort_order asc, id asc")
}

func (r *taskGroupRepository) FindByIDWithMembers(ctx context.Context, id uint) (*model.TaskGroup, error) {
	var group model.TaskGroup
	if err := GetDB(ctx, r.db).Preload("Users").Preload("Tasks", activeTasks).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *taskGroupRepository) List(ctx context.Context, search string, p pagination.Params) ([]model.TaskGroup, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB { return likeAny(db, search, "name") }
	return paginate[model.TaskGroup](GetDB(ctx, r.db), scope, "name asc, id asc", p)
}

func (r *taskGroupRepository) ListActiveWithMembers(ctx context.Context) ([]model.TaskGroup, error) {
	var groups []model.TaskGroup
	err := GetDB(ctx, r.db).
		Preload("Users").
		Preload("Tasks", activeTasks).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *taskGroupRepository) ReplaceUsers(ctx context.Context, group *model.TaskGroup, users []model.User) error {
	return GetDB(ctx, r.db).Model(group).Association("Users").Replace(users)
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	List(ctx context.Context, groupID *uint, p pagination.Params) ([]model.Task, int64, error)
}

type taskRepository struct {
	crud[model.Task]
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{crud[model.Task]{db: db}}
}

func (r *taskRepository) List(ctx context.Context, groupID *uint, p pagination.Params) ([]model.Task, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if groupID != nil {
			db = db.Where("task_group_id = ?", *groupID)
		}
		return db
	}
	return paginate[model.Task](GetDB(ctx, r.db), scope, "task_group_id asc, time_of_day asc, sort_order asc, id asc", p)
}

type UserTaskFilter struct {
	UserID      *uint
	TaskGroupID *uint
	Date        string
	Status      *model.UserTaskStatus
}

// CompletionRow aggregates the user tasks scheduled on one date
type CompletionRow struct {
	ScheduledDate string `json:"date"`
	Total         int64  `json:"total"`
	Done          int64  `json:"done"`
}

type UserTaskRepository interface {
	Update(ctx context.Context, task *model.UserTask) error
	FindByID(ctx context.Context, id uint) (*model.UserTask, error)
	BulkCreate(ctx context.Context, tasks []model.UserTask) error
	ExistsForGroupDate(ctx context.Context, groupID uint, date string) (bool, error)
	List(ctx context.Context, f UserTaskFilter, p pagination.Params) ([]model.UserTask, int64, error)
	Completion(ctx context.Context, from, to string, userID *uint) ([]CompletionRow, error)
}

type userTaskRepository struct {
	crud[model.UserTask]
}

func NewUserTaskRepository(db *gorm.DB) UserTaskRepository {
	return &userTaskRepository{crud[model.UserTask]{db: db}}
}

func (r *userTaskRepository) BulkCreate(ctx context.Context, tasks []model.UserTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).CreateInBatches(tasks, 200).Error
}

func (r *userTaskRepository) ExistsForGroupDate(ctx context.Context, groupID uint, date string) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.UserTask{}).
		Where("task_group_id = ? AND scheduled_date = ?", groupID, date).
		Count(&n).Error
	return n > 0, err
}

func (r *userTaskRepository) List(ctx context.Context, f UserTaskFilter, p pagination.Params) ([]model.UserTask, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.TaskGroupID != nil {
			db = db.Where("task_group_id = ?", *f.TaskGroupID)
		}
		if f.Date != "" {
			db = db.Where("scheduled_date = ?", f.Date)
		}
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		return db
	}
	return paginate[model.UserTask](GetDB(ctx, r.db), scope, "scheduled_at asc, id asc", p, "Task", "User")
}

func (r *userTaskRepository) Completion(ctx context.Context, from, to string, userID *uint) ([]CompletionRow, error) {
	var rows []CompletionRow
	q := GetDB(ctx, r.db).Model(&model.UserTask{}).
		Select("scheduled_date, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done", model.UserTaskDone).
		Where("scheduled_date >= ? AND scheduled_date <= ?", from, to)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Group("scheduled_date").Order("scheduled_date asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
