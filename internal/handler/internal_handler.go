package handler

import (
	"net/http"

	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

// InternalHandler serves machine-to-machine endpoints behind HTTP Basic auth.
type InternalHandler struct {
	reminderService service.ReminderService
}

func NewInternalHandler(reminderService service.ReminderService) *InternalHandler {
	return &InternalHandler{reminderService: reminderService}
}

// RegisterRoutes expects router to carry the basic-auth middleware already.
func (h *InternalHandler) RegisterRoutes(router *gin.RouterGroup) {
	internal := router.Group("/api/internal")
	internal.POST("/payments/remind", h.RemindPayments)
}

// RemindPayments runs one reminder pass, the same one the scheduler runs daily
// @Summary      Send payment reminders
// @Tags         internal
// @Security     BasicAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ReminderResult}
// @Failure      401  {object}  response.Response
// @Router       /api/internal/payments/remind [post]
func (h *InternalHandler) RemindPayments(c *gin.Context) {
	result, err := h.reminderService.Run(c.Request.Context(), 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
