package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type ScanInfoHandler struct {
	scanService service.ScanInfoService
	guard       *middleware.Guard
}

func NewScanInfoHandler(scanService service.ScanInfoService, guard *middleware.Guard) *ScanInfoHandler {
	return &ScanInfoHandler{scanService: scanService, guard: guard}
}

func (h *ScanInfoHandler) RegisterRoutes(router *gin.RouterGroup) {
	scans := router.Group("/api/scan-infos")
	{
		scans.GET("", h.guard.RequireAccess(model.MenuURLScanInfos, model.PermView), h.ListScanInfos)
		scans.GET("/:id", h.guard.RequireAccess(model.MenuURLScanInfos, model.PermView), h.GetScanInfo)
		scans.POST("", h.guard.RequireAccess(model.MenuURLScanInfos, model.PermCreate), h.CreateScanInfo)
	}
}

// ListScanInfos returns check-ins, newest first
// @Summary      List scan infos
// @Tags         scan-infos
// @Security     BearerAuth
// @Produce      json
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Number of items per page (default 20)"
// @Param        user_id  query     int     false  "Filter by user"
// @Param        from     query     string  false  "Scanned on or after (YYYY-MM-DD)"
// @Param        to       query     string  false  "Scanned before the end of (YYYY-MM-DD)"
// @Success      200      {object}  response.Response{data=[]model.ScanInfo}
// @Failure      400      {object}  response.Response
// @Router       /api/scan-infos [get]
func (h *ScanInfoHandler) ListScanInfos(c *gin.Context) {
	p := pagination.Parse(c)
	var f repository.ScanInfoFilter
	var ok bool
	if f.UserID, ok = queryUint(c, "user_id"); !ok {
		return
	}
	if f.From, ok = queryDate(c, "from"); !ok {
		return
	}
	if f.To, ok = queryDate(c, "to"); !ok {
		return
	}
	if f.To != nil {
		end := f.To.AddDate(0, 0, 1)
		f.To = &end
	}

	scans, total, err := h.scanService.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, scans, p.Page, p.Limit, total))
}

// @Summary      Get scan info
// @Tags         scan-infos
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Scan info ID"
// @Success      200  {object}  response.Response{data=model.ScanInfo}
// @Failure      404  {object}  response.Response
// @Router       /api/scan-infos/{id} [get]
func (h *ScanInfoHandler) GetScanInfo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	scan, err := h.scanService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, scan))
}

// CreateScanInfo records a check-in by the caller
// @Summary      Create scan info
// @Tags         scan-infos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateScanInfoRequest  true  "Scan"
// @Success      201      {object}  response.Response{data=model.ScanInfo}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/scan-infos [post]
func (h *ScanInfoHandler) CreateScanInfo(c *gin.Context) {
	var req service.CreateScanInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	scan, err := h.scanService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, scan))
}
