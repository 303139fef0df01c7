package handler

import (
	"net/http"
	"strings"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserTaskHandler struct {
	userTaskService service.UserTaskService
	guard           *middleware.Guard
}

func NewUserTaskHandler(userTaskService service.UserTaskService, guard *middleware.Guard) *UserTaskHandler {
	return &UserTaskHandler{userTaskService: userTaskService, guard: guard}
}

func (h *UserTaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	userTasks := router.Group("/api/user-tasks")
	{
		userTasks.GET("", h.guard.RequireAccess(model.MenuURLUserTasks, model.PermView), h.ListUserTasks)
		userTasks.GET("/mine", h.ListMyUserTasks)
		userTasks.GET("/completion", h.guard.RequireAccess(model.MenuURLUserTasks, model.PermView), h.GetCompletion)
		userTasks.POST("/generate", h.guard.RequireAccess(model.MenuURLUserTasks, model.PermCreate), h.GenerateUserTasks)
		userTasks.PUT("/:id/status", h.UpdateUserTaskStatus)
	}
}

// ListUserTasks returns generated tasks
// @Summary      List user tasks
// @Tags         user-tasks
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Param        user_id        query     int     false  "Filter by assignee"
// @Param        task_group_id  query     int     false  "Filter by task group"
// @Param        date           query     string  false  "Scheduled date (YYYY-MM-DD)"
// @Param        status         query     string  false  "pending, in_progress, done or skipped"
// @Success      200            {object}  response.Response{data=[]model.UserTask}
// @Failure      400            {object}  response.Response
// @Router       /api/user-tasks [get]
func (h *UserTaskHandler) ListUserTasks(c *gin.Context) {
	f, ok := userTaskFilter(c)
	if !ok {
		return
	}
	if f.UserID, ok = queryUint(c, "user_id"); !ok {
		return
	}
	h.list(c, f)
}

// ListMyUserTasks returns the caller's own tasks. Needs no menu permission.
// @Summary      List my user tasks
// @Tags         user-tasks
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        date    query     string  false  "Scheduled date (YYYY-MM-DD)"
// @Param        status  query     string  false  "pending, in_progress, done or skipped"
// @Success      200     {object}  response.Response{data=[]model.UserTask}
// @Router       /api/user-tasks/mine [get]
func (h *UserTaskHandler) ListMyUserTasks(c *gin.Context) {
	f, ok := userTaskFilter(c)
	if !ok {
		return
	}
	uid := middleware.UserID(c)
	f.UserID = &uid
	h.list(c, f)
}

func userTaskFilter(c *gin.Context) (repository.UserTaskFilter, bool) {
	f := repository.UserTaskFilter{Date: strings.TrimSpace(c.Query("date"))}
	var ok bool
	if f.TaskGroupID, ok = queryUint(c, "task_group_id"); !ok {
		return f, false
	}
	if f.Status, ok = queryEnum(c, "status", model.ParseUserTaskStatus); !ok {
		return f, false
	}
	if f.Date != "" {
		if _, ok = queryDate(c, "date"); !ok {
			return f, false
		}
	}
	return f, true
}

func (h *UserTaskHandler) list(c *gin.Context, f repository.UserTaskFilter) {
	p := pagination.Parse(c)
	tasks, total, err := h.userTaskService.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, tasks, p.Page, p.Limit, total))
}

// GenerateUserTasks expands task groups into per-user tasks for a date
// @Summary      Generate user tasks
// @Description  Creates user tasks for every active group scheduled on the date's weekday, or for one group
// @Tags         user-tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GenerateUserTasksRequest  true  "Date and optional group"
// @Success      201      {object}  response.Response{data=service.GenerateUserTasksResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/user-tasks/generate [post]
func (h *UserTaskHandler) GenerateUserTasks(c *gin.Context) {
	var req service.GenerateUserTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.userTaskService.Generate(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateUserTaskStatus lets the assignee report progress on a task
// @Summary      Update user task status
// @Tags         user-tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                                  true  "User task ID"
// @Param        payload  body      service.UpdateUserTaskStatusRequest  true  "Status"
// @Success      200      {object}  response.Response{data=model.UserTask}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/user-tasks/{id}/status [put]
func (h *UserTaskHandler) UpdateUserTaskStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.userTaskService.UpdateStatus(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// GetCompletion returns the share of done tasks per date
// @Summary      User task completion
// @Tags         user-tasks
// @Security     BearerAuth
// @Produce      json
// @Param        from     query     string  false  "First date (YYYY-MM-DD, default today)"
// @Param        to       query     string  false  "Last date (YYYY-MM-DD, default today)"
// @Param        user_id  query     int     false  "Only this assignee"
// @Success      200      {object}  response.Response{data=[]service.CompletionDay}
// @Failure      400      {object}  response.Response
// @Router       /api/user-tasks/completion [get]
func (h *UserTaskHandler) GetCompletion(c *gin.Context) {
	userID, ok := queryUint(c, "user_id")
	if !ok {
		return
	}
	days, err := h.userTaskService.Completion(c.Request.Context(), c.Query("from"), c.Query("to"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, days))
}
