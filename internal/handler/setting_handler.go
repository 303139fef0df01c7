package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	settingService service.SettingService
	guard          *middleware.Guard
}

func NewSettingHandler(settingService service.SettingService, guard *middleware.Guard) *SettingHandler {
	return &SettingHandler{settingService: settingService, guard: guard}
}

func (h *SettingHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("", h.guard.RequireAccess(model.MenuURLSettings, model.PermView), h.ListSettings)
		settings.GET("/:key", h.guard.RequireAccess(model.MenuURLSettings, model.PermView), h.GetSetting)
		settings.PUT("", h.guard.RequireAccess(model.MenuURLSettings, model.PermUpdate), h.UpdateSettings)
	}
}

// @Summary      List settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Setting}
// @Router       /api/settings [get]
func (h *SettingHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// @Summary      Get setting
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Param        key  path      string  true  "Setting key"
// @Success      200  {object}  response.Response{data=model.Setting}
// @Failure      404  {object}  response.Response
// @Router       /api/settings/{key} [get]
func (h *SettingHandler) GetSetting(c *gin.Context) {
	setting, err := h.settingService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, setting))
}

// UpdateSettings upserts the given key/value pairs
// @Summary      Update settings
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateSettingsRequest  true  "Settings"
// @Success      200      {object}  response.Response{data=[]model.Setting}
// @Failure      400      {object}  response.Response
// @Router       /api/settings [put]
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	settings, err := h.settingService.Upsert(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}
