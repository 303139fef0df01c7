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

type AssetHandler struct {
	assetService service.AssetService
	unitService  service.UnitService
	guard        *middleware.Guard
}

func NewAssetHandler(assetService service.AssetService, unitService service.UnitService, guard *middleware.Guard) *AssetHandler {
	return &AssetHandler{assetService: assetService, unitService: unitService, guard: guard}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/api/assets")
	{
		assets.GET("", h.guard.RequireAccess(model.MenuURLAssets, model.PermView), h.ListAssets)
		assets.GET("/:id", h.guard.RequireAccess(model.MenuURLAssets, model.PermView), h.GetAsset)
		assets.POST("", h.guard.RequireAccess(model.MenuURLAssets, model.PermCreate), h.CreateAsset)
		assets.PUT("/:id", h.guard.RequireAccess(model.MenuURLAssets, model.PermUpdate), h.UpdateAsset)
		assets.DELETE("/:id", h.guard.RequireAccess(model.MenuURLAssets, model.PermDelete), h.DeleteAsset)
	}

	units := router.Group("/api/units")
	{
		units.GET("", h.guard.RequireAccess(model.MenuURLUnits, model.PermView), h.ListUnits)
		units.GET("/:id", h.guard.RequireAccess(model.MenuURLUnits, model.PermView), h.GetUnit)
		units.POST("", h.guard.RequireAccess(model.MenuURLUnits, model.PermCreate), h.CreateUnit)
		units.PUT("/:id", h.guard.RequireAccess(model.MenuURLUnits, model.PermUpdate), h.UpdateUnit)
		units.DELETE("/:id", h.guard.RequireAccess(model.MenuURLUnits, model.PermDelete), h.DeleteUnit)
	}
}

// ListAssets returns buildings matching the filters
// @Summary      List assets
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Code or name contains"
// @Param        city    query     string  false  "Exact city"
// @Param        active  query     bool    false  "Filter by active flag"
// @Success      200     {object}  response.Response{data=[]model.Asset}
// @Router       /api/assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	p := pagination.Parse(c)
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	f := repository.AssetFilter{
		Search: strings.TrimSpace(c.Query("search")),
		City:   strings.TrimSpace(c.Query("city")),
		Active: active,
	}
	assets, total, err := h.assetService.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, assets, p.Page, p.Limit, total))
}

// GetAsset returns an asset with its units
// @Summary      Get asset
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Asset ID"
// @Success      200  {object}  response.Response{data=model.Asset}
// @Failure      404  {object}  response.Response
// @Router       /api/assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	asset, err := h.assetService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

// @Summary      Create asset
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAssetRequest  true  "Asset"
// @Success      201      {object}  response.Response{data=model.Asset}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req service.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	asset, err := h.assetService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, asset))
}

// @Summary      Update asset
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "Asset ID"
// @Param        payload  body      service.UpdateAssetRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Asset}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	asset, err := h.assetService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

// @Summary      Delete asset
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Asset ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.assetService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Asset deleted successfully", nil))
}

// ListUnits returns rentable units, optionally only vacant ones
// @Summary      List units
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Param        asset_id  query     int     false  "Filter by asset"
// @Param        search    query     string  false  "Code or name contains"
// @Param        vacant    query     bool    false  "Only units without an active lease"
// @Success      200       {object}  response.Response{data=[]model.Unit}
// @Router       /api/units [get]
func (h *AssetHandler) ListUnits(c *gin.Context) {
	p := pagination.Parse(c)
	assetID, ok := queryUint(c, "asset_id")
	if !ok {
		return
	}
	vacant, ok := queryBool(c, "vacant")
	if !ok {
		return
	}
	f := repository.UnitFilter{AssetID: assetID, Search: strings.TrimSpace(c.Query("search"))}
	if vacant != nil {
		f.Vacant = *vacant
	}
	units, total, err := h.unitService.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, units, p.Page, p.Limit, total))
}

// @Summary      Get unit
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Unit ID"
// @Success      200  {object}  response.Response{data=model.Unit}
// @Failure      404  {object}  response.Response
// @Router       /api/units/{id} [get]
func (h *AssetHandler) GetUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	unit, err := h.unitService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// @Summary      Create unit
// @Tags         units
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUnitRequest  true  "Unit"
// @Success      201      {object}  response.Response{data=model.Unit}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/units [post]
func (h *AssetHandler) CreateUnit(c *gin.Context) {
	var req service.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	unit, err := h.unitService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, unit))
}

// @Summary      Update unit
// @Tags         units
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Unit ID"
// @Param        payload  body      service.UpdateUnitRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Unit}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/units/{id} [put]
func (h *AssetHandler) UpdateUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	unit, err := h.unitService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// @Summary      Delete unit
// @Tags         units
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Unit ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/units/{id} [delete]
func (h *AssetHandler) DeleteUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.unitService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Unit deleted successfully", nil))
}
