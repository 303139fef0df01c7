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

type ComplaintHandler struct {
	complaintService service.ComplaintReportService
	guard            *middleware.Guard
}

func NewComplaintHandler(complaintService service.ComplaintReportService, guard *middleware.Guard) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService, guard: guard}
}

func (h *ComplaintHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/complaint-reports")
	{
		reports.GET("", h.guard.RequireAccess(model.MenuURLComplaints, model.PermView), h.ListComplaintReports)
		reports.GET("/:id", h.guard.RequireAccess(model.MenuURLComplaints, model.PermView), h.GetComplaintReport)
		reports.POST("", h.guard.RequireAccess(model.MenuURLComplaints, model.PermCreate), h.CreateComplaintReport)
		reports.PUT("/:id", h.guard.RequireAccess(model.MenuURLComplaints, model.PermUpdate), h.UpdateComplaintReport)
		reports.DELETE("/:id", h.guard.RequireAccess(model.MenuURLComplaints, model.PermDelete), h.DeleteComplaintReport)
	}
}

// ListComplaintReports returns complaints matching the filters
// @Summary      List complaint reports
// @Tags         complaint-reports
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Param        search     query     string  false  "Title contains"
// @Param        status     query     string  false  "open, in_progress, resolved or rejected"
// @Param        tenant_id  query     int     false  "Filter by tenant"
// @Param        asset_id   query     int     false  "Filter by asset"
// @Success      200        {object}  response.Response{data=[]model.ComplaintReport}
// @Failure      400        {object}  response.Response
// @Router       /api/complaint-reports [get]
func (h *ComplaintHandler) ListComplaintReports(c *gin.Context) {
	p := pagination.Parse(c)
	f := repository.ComplaintFilter{Search: strings.TrimSpace(c.Query("search"))}
	var ok bool
	if f.Status, ok = queryEnum(c, "status", model.ParseComplaintReportStatus); !ok {
		return
	}
	if f.TenantID, ok = queryUint(c, "tenant_id"); !ok {
		return
	}
	if f.AssetID, ok = queryUint(c, "asset_id"); !ok {
		return
	}

	reports, total, err := h.complaintService.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, reports, p.Page, p.Limit, total))
}

// @Summary      Get complaint report
// @Tags         complaint-reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Complaint report ID"
// @Success      200  {object}  response.Response{data=model.ComplaintReport}
// @Failure      404  {object}  response.Response
// @Router       /api/complaint-reports/{id} [get]
func (h *ComplaintHandler) GetComplaintReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	report, err := h.complaintService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// CreateComplaintReport files a complaint reported by the caller
// @Summary      Create complaint report
// @Tags         complaint-reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateComplaintReportRequest  true  "Complaint"
// @Success      201      {object}  response.Response{data=model.ComplaintReport}
// @Failure      400      {object}  response.Response
// @Router       /api/complaint-reports [post]
func (h *ComplaintHandler) CreateComplaintReport(c *gin.Context) {
	var req service.CreateComplaintReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.complaintService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// UpdateComplaintReport changes the status of a complaint. Other fields are rejected.
// @Summary      Update complaint report status
// @Tags         complaint-reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                                   true  "Complaint report ID"
// @Param        payload  body      service.UpdateComplaintReportRequest  true  "Status"
// @Success      200      {object}  response.Response{data=model.ComplaintReport}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/complaint-reports/{id} [put]
func (h *ComplaintHandler) UpdateComplaintReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateComplaintReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.complaintService.UpdateStatus(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// @Summary      Delete complaint report
// @Tags         complaint-reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Complaint report ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/complaint-reports/{id} [delete]
func (h *ComplaintHandler) DeleteComplaintReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.complaintService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Complaint report deleted successfully", nil))
}
