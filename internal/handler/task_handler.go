package handler

import (
	"net/http"
	"strings"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	groupService service.TaskGroupService
	taskService  service.TaskService
	guard        *middleware.Guard
}

func NewTaskHandler(groupService service.TaskGroupService, taskService service.TaskService, guard *middleware.Guard) *TaskHandler {
	return &TaskHandler{groupService: groupService, taskService: taskService, guard: guard}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/api/task-groups")
	{
		groups.GET("", h.guard.RequireAccess(model.MenuURLTaskGroups, model.PermView), h.ListTaskGroups)
		groups.GET("/:id", h.guard.RequireAccess(model.MenuURLTaskGroups, model.PermView), h.GetTaskGroup)
		groups.POST("", h.guard.RequireAccess(model.MenuURLTaskGroups, model.PermCreate), h.CreateTaskGroup)
		groups.PUT("/:id", h.guard.RequireAccess(model.MenuURLTaskGroups, model.PermUpdate), h.UpdateTaskGroup)
		groups.DELETE("/:id", h.guard.RequireAccess(model.MenuURLTaskGroups, model.PermDelete), h.DeleteTaskGroup)
	}

	tasks := router.Group("/api/tasks")
	{
		tasks.GET("", h.guard.RequireAccess(model.MenuURLTasks, model.PermView), h.ListTasks)
		tasks.GET("/:id", h.guard.RequireAccess(model.MenuURLTasks, model.PermView), h.GetTask)
		tasks.POST("", h.guard.RequireAccess(model.MenuURLTasks, model.PermCreate), h.CreateTask)
		tasks.PUT("/:id", h.guard.RequireAccess(model.MenuURLTasks, model.PermUpdate), h.UpdateTask)
		tasks.DELETE("/:id", h.guard.RequireAccess(model.MenuURLTasks, model.PermDelete), h.DeleteTask)
	}
}

// ListTaskGroups returns task groups with their members
// @Summary      List task groups
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Name contains"
// @Success      200     {object}  response.Response{data=[]model.TaskGroup}
// @Router       /api/task-groups [get]
func (h *TaskHandler) ListTaskGroups(c *gin.Context) {
	p := pagination.Parse(c)
	groups, total, err := h.groupService.List(c.Request.Context(), strings.TrimSpace(c.Query("search")), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, groups, p.Page, p.Limit, total))
}

// @Summary      Get task group
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Task group ID"
// @Success      200  {object}  response.Response{data=model.TaskGroup}
// @Failure      404  {object}  response.Response
// @Router       /api/task-groups/{id} [get]
func (h *TaskHandler) GetTaskGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	group, err := h.groupService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

// CreateTaskGroup defines a recurring schedule. days_of_week uses 0 for Sunday.
// @Summary      Create task group
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaskGroupRequest  true  "Task group"
// @Success      201      {object}  response.Response{data=model.TaskGroup}
// @Failure      400      {object}  response.Response
// @Router       /api/task-groups [post]
func (h *TaskHandler) CreateTaskGroup(c *gin.Context) {
	var req service.CreateTaskGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, group))
}

// @Summary      Update task group
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                             true  "Task group ID"
// @Param        payload  body      service.UpdateTaskGroupRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.TaskGroup}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/task-groups/{id} [put]
func (h *TaskHandler) UpdateTaskGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTaskGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.groupService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

// @Summary      Delete task group
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Task group ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/task-groups/{id} [delete]
func (h *TaskHandler) DeleteTaskGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Task group deleted successfully", nil))
}

// ListTasks returns task templates, optionally for one group
// @Summary      List tasks
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int  false  "Page number (default 1)"
// @Param        limit          query     int  false  "Number of items per page (default 20)"
// @Param        task_group_id  query     int  false  "Filter by task group"
// @Success      200            {object}  response.Response{data=[]model.Task}
// @Router       /api/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p := pagination.Parse(c)
	groupID, ok := queryUint(c, "task_group_id")
	if !ok {
		return
	}
	tasks, total, err := h.taskService.List(c.Request.Context(), groupID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, tasks, p.Page, p.Limit, total))
}

// @Summary      Get task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  response.Response{data=model.Task}
// @Failure      404  {object}  response.Response
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// @Summary      Create task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaskRequest  true  "Task"
// @Success      201      {object}  response.Response{data=model.Task}
// @Failure      400      {object}  response.Response
// @Router       /api/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// @Summary      Update task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Task}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// @Summary      Delete task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Task deleted successfully", nil))
}
