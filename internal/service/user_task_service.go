package service

import (
	"context"
	"math"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"
)

type GenerateUserTasksRequest struct {
	Date        string `json:"date"`
	TaskGroupID *uint  `json:"task_group_id"`
}

type GenerateUserTasksResult struct {
	Date    string `json:"date"`
	Groups  int    `json:"groups"`
	Created int    `json:"created"`
}

type UpdateUserTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CompletionDay is the share of done user tasks on one date
type CompletionDay struct {
	Date    string  `json:"date"`
	Total   int64   `json:"total"`
	Done    int64   `json:"done"`
	Percent float64 `json:"percent"`
}

type UserTaskService interface {
	// Generate creates one user task per member and in-window task of every active group scheduled on
	// the date's weekday. A group that already has user tasks for the date is a Conflict when it was
	// asked for explicitly and is skipped otherwise.
	Generate(ctx context.Context, actorID uint, req GenerateUserTasksRequest) (*GenerateUserTasksResult, error)
	List(ctx context.Context, f repository.UserTaskFilter, p pagination.Params) ([]model.UserTask, int64, error)
	UpdateStatus(ctx context.Context, actorID, id uint, req UpdateUserTaskStatusRequest) (*model.UserTask, error)
	Completion(ctx context.Context, from, to string, userID *uint) ([]CompletionDay, error)
}

// counter is satisfied by prometheus.Counter
type counter interface {
	Add(float64)
}

type nopCounter struct{}

func (nopCounter) Add(float64) {}

type userTaskService struct {
	txManager repository.TransactionManager
	groups    repository.TaskGroupRepository
	userTasks repository.UserTaskRepository
	audit     auditor
	notify    Notifier
	issued    counter
	now       func() time.Time
}

func NewUserTaskService(
	txManager repository.TransactionManager,
	groups repository.TaskGroupRepository,
	userTasks repository.UserTaskRepository,
	auditRepo repository.AuditRepository,
	notify Notifier,
	issued counter,
) UserTaskService {
	if issued == nil {
		issued = nopCounter{}
	}
	return &userTaskService{
		txManager: txManager,
		groups:    groups,
		userTasks: userTasks,
		audit:     auditor{repo: auditRepo},
		notify:    notifierOrNop(notify),
		issued:    issued,
		now:       time.Now,
	}
}

func (s *userTaskService) Generate(ctx context.Context, actorID uint, req GenerateUserTasksRequest) (*GenerateUserTasksResult, error) {
	day := s.now()
	if req.Date != "" {
		d, err := parseDate("date", req.Date)
		if err != nil {
			return nil, err
		}
		day = d
	}
	date := day.Format(dateLayout)

	var groups []model.TaskGroup
	if req.TaskGroupID != nil {
		g, err := s.groups.FindByIDWithMembers(ctx, *req.TaskGroupID)
		if err != nil {
			return nil, validationIfMissing(err, "Task group not found")
		}
		if !g.IsActive {
			return nil, apperr.Validation("Task group is inactive")
		}
		if !hasWeekday(g.DaysOfWeek, day.Weekday()) {
			return nil, apperr.Validation("Task group is not scheduled on %s", day.Weekday())
		}
		groups = []model.TaskGroup{*g}
	} else {
		all, err := s.groups.ListActiveWithMembers(ctx)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load task groups")
		}
		for _, g := range all {
			if hasWeekday(g.DaysOfWeek, day.Weekday()) {
				groups = append(groups, g)
			}
		}
	}

	result := &GenerateUserTasksResult{Date: date}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		skipped := 0
		for _, g := range groups {
			exists, err := s.userTasks.ExistsForGroupDate(txCtx, g.ID, date)
			if err != nil {
				return apperr.Internal(err, "failed to check existing user tasks")
			}
			if exists {
				if req.TaskGroupID != nil {
					return apperr.Conflict("User tasks for %s on %s already exist", g.Name, date)
				}
				skipped++
				continue
			}
			rows := expandGroup(g, day)
			if err := s.userTasks.BulkCreate(txCtx, rows); err != nil {
				return apperr.Internal(err, "failed to create user tasks")
			}
			result.Groups++
			result.Created += len(rows)
		}
		if skipped > 0 && skipped == len(groups) {
			return apperr.Conflict("User tasks for %s already exist", date)
		}
		return s.audit.record(txCtx, actorID, model.ActionGenerateUserTasks, "user_task", 0, result)
	})
	if err != nil {
		return nil, err
	}

	s.issued.Add(float64(result.Created))
	if result.Created > 0 {
		s.notify.Publish(EventUserTasksGenerated, result)
	}
	return result, nil
}

// expandGroup builds the pending user tasks of one group for one day. Tasks whose time falls
// outside the group's window are left out.
func expandGroup(g model.TaskGroup, day time.Time) []model.UserTask {
	start, errStart := parseClock("start_time", g.StartTime)
	end, errEnd := parseClock("end_time", g.EndTime)
	if errStart != nil || errEnd != nil {
		return nil
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	date := midnight.Format(dateLayout)

	var rows []model.UserTask
	for _, t := range g.Tasks {
		if !t.IsActive {
			continue
		}
		at, err := parseClock("time_of_day", t.TimeOfDay)
		if err != nil || at < start || at > end {
			continue
		}
		for _, u := range g.Users {
			rows = append(rows, model.UserTask{
				UserID:        u.ID,
				TaskID:        t.ID,
				TaskGroupID:   g.ID,
				ScheduledDate: date,
				ScheduledAt:   midnight.Add(time.Duration(at) * time.Minute),
				Status:        model.UserTaskPending,
			})
		}
	}
	return rows
}

func (s *userTaskService) List(ctx context.Context, f repository.UserTaskFilter, p pagination.Params) ([]model.UserTask, int64, error) {
	if f.Date != "" {
		if _, err := parseDate("date", f.Date); err != nil {
			return nil, 0, err
		}
	}
	items, total, err := s.userTasks.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list user tasks")
	}
	return items, total, nil
}

func (s *userTaskService) UpdateStatus(ctx context.Context, actorID, id uint, req UpdateUserTaskStatusRequest) (*model.UserTask, error) {
	status, err := model.ParseUserTaskStatus(req.Status)
	if err != nil {
		return nil, err
	}
	ut, err := s.userTasks.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "User task not found")
	}
	if ut.UserID != actorID {
		return nil, apperr.Forbidden("User task belongs to another user")
	}

	ut.Status = status
	if status == model.UserTaskDone {
		now := s.now()
		ut.CompletedAt = &now
	} else {
		ut.CompletedAt = nil
	}
	if req.Notes != "" {
		ut.Notes = req.Notes
	}
	if err := s.userTasks.Update(ctx, ut); err != nil {
		return nil, apperr.Internal(err, "failed to update user task")
	}
	return ut, nil
}

func (s *userTaskService) Completion(ctx context.Context, from, to string, userID *uint) ([]CompletionDay, error) {
	today := s.now().Format(dateLayout)
	if from == "" {
		from = today
	}
	if to == "" {
		to = from
	}
	f, err := parseDate("from", from)
	if err != nil {
		return nil, err
	}
	t, err := parseDate("to", to)
	if err != nil {
		return nil, err
	}
	if t.Before(f) {
		return nil, apperr.Validation("to must not be before from")
	}

	rows, err := s.userTasks.Completion(ctx, from, to, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to compute completion")
	}
	out := make([]CompletionDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, CompletionDay{
			Date:    r.ScheduledDate,
			Total:   r.Total,
			Done:    r.Done,
			Percent: percent(r.Done, r.Total),
		})
	}
	return out, nil
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
