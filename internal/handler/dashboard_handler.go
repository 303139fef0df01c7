package handler

import (
	"fmt"
	"net/http"
	"time"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	dashboardService service.DashboardService
	guard            *middleware.Guard
}

func NewDashboardHandler(dashboardService service.DashboardService, guard *middleware.Guard) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, guard: guard}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.GET("", h.guard.RequireAccess(model.MenuURLDashboard, model.PermView), h.GetSummary)
		dashboard.GET("/payments/export", h.guard.RequireAccess(model.MenuURLPayments, model.PermView), h.ExportPayments)
	}
}

// GetSummary returns entity counts and payment totals for a period
// @Summary      Dashboard summary
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Start date (YYYY-MM-DD, default first day of month)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD, default last day of month)"
// @Success      200   {object}  response.Response{data=service.DashboardSummary}
// @Failure      400   {object}  response.Response
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ExportPayments downloads payments due in the period as an Excel workbook
// @Summary      Export payments
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {file}    file
// @Failure      400   {object}  response.Response
// @Router       /api/dashboard/payments/export [get]
func (h *DashboardHandler) ExportPayments(c *gin.Context) {
	data, err := h.dashboardService.ExportPayments(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("payments-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
