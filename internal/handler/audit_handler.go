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

type AuditHandler struct {
	auditService service.AuditService
	guard        *middleware.Guard
}

func NewAuditHandler(auditService service.AuditService, guard *middleware.Guard) *AuditHandler {
	return &AuditHandler{auditService: auditService, guard: guard}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.GET("", h.guard.RequireAccess(model.MenuURLAuditLogs, model.PermView), h.GetAuditLogs)
}

// GetAuditLogs lists write history, newest first
// @Summary      Get audit logs
// @Description  Retrieves a paginated list of audit logs with the acting user's name
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        entity_type  query     string  false  "Filter by entity type"
// @Param        user_id      query     int     false  "Filter by acting user"
// @Success      200          {object}  response.Response{data=[]service.AuditLogResponse}
// @Failure      403          {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	userID, ok := queryUint(c, "user_id")
	if !ok {
		return
	}
	f := repository.AuditFilter{EntityType: strings.TrimSpace(c.Query("entity_type")), UserID: userID}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, p.Page, p.Limit, total))
}
