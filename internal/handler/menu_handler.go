package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService service.MenuService
	guard       *middleware.Guard
}

func NewMenuHandler(menuService service.MenuService, guard *middleware.Guard) *MenuHandler {
	return &MenuHandler{menuService: menuService, guard: guard}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	menus := router.Group("/api/menus")
	{
		menus.GET("", h.guard.RequireAccess(model.MenuURLMenus, model.PermView), h.ListMenus)
		menus.GET("/tree", h.guard.RequireAccess(model.MenuURLMenus, model.PermView), h.GetMenuTree)
		menus.GET("/:id", h.guard.RequireAccess(model.MenuURLMenus, model.PermView), h.GetMenu)
		menus.POST("", h.guard.RequireAccess(model.MenuURLMenus, model.PermCreate), h.CreateMenu)
		menus.PUT("/:id", h.guard.RequireAccess(model.MenuURLMenus, model.PermUpdate), h.UpdateMenu)
		menus.DELETE("/:id", h.guard.RequireAccess(model.MenuURLMenus, model.PermDelete), h.DeleteMenu)
	}
}

// ListMenus returns every menu as a flat list
// @Summary      List menus
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Menu}
// @Router       /api/menus [get]
func (h *MenuHandler) ListMenus(c *gin.Context) {
	menus, err := h.menuService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, menus))
}

// GetMenuTree returns all menus nested, inactive ones included
// @Summary      Menu tree
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.MenuTreeNode}
// @Router       /api/menus/tree [get]
func (h *MenuHandler) GetMenuTree(c *gin.Context) {
	tree, err := h.menuService.Tree(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tree))
}

// @Summary      Get menu
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Menu ID"
// @Success      200  {object}  response.Response{data=model.Menu}
// @Failure      404  {object}  response.Response
// @Router       /api/menus/{id} [get]
func (h *MenuHandler) GetMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	menu, err := h.menuService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, menu))
}

// @Summary      Create menu
// @Tags         menus
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateMenuRequest  true  "Menu"
// @Success      201      {object}  response.Response{data=model.Menu}
// @Failure      400      {object}  response.Response
// @Router       /api/menus [post]
func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var req service.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.menuService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, menu))
}

// UpdateMenu applies a partial update. Moving a menu under its own descendant is rejected.
// @Summary      Update menu
// @Tags         menus
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Menu ID"
// @Param        payload  body      service.UpdateMenuRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Menu}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/menus/{id} [put]
func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.menuService.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, menu))
}

// @Summary      Delete menu
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Menu ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/menus/{id} [delete]
func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.menuService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Menu deleted successfully", nil))
}
