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

type PaymentHandler struct {
	paymentService service.PaymentService
	guard          *middleware.Guard
}

func NewPaymentHandler(paymentService service.PaymentService, guard *middleware.Guard) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, guard: guard}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		payments.GET("", h.guard.RequireAccess(model.MenuURLPayments, model.PermView), h.ListPayments)
		payments.GET("/:id", h.guard.RequireAccess(model.MenuURLPayments, model.PermView), h.GetPayment)
		payments.POST("", h.guard.RequireAccess(model.MenuURLPayments, model.PermCreate), h.CreatePayment)
		payments.PUT("/:id/status", h.guard.RequireAccess(model.MenuURLPayments, model.PermUpdate), h.UpdatePaymentStatus)
		payments.POST("/:id/mark-paid", h.guard.RequireAccess(model.MenuURLPayments, model.PermConfirm), h.MarkPaid)
	}
}

// ListPayments returns payments matching the filters, earliest due first
// @Summary      List payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Param        tenant_id  query     int     false  "Filter by tenant"
// @Param        status     query     string  false  "pending, paid, overdue or cancelled"
// @Param        from       query     string  false  "Due on or after (YYYY-MM-DD)"
// @Param        to         query     string  false  "Due on or before (YYYY-MM-DD)"
// @Success      200        {object}  response.Response{data=[]model.Payment}
// @Failure      400        {object}  response.Response
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	p := pagination.Parse(c)
	var f repository.PaymentFilter
	var ok bool
	if f.TenantID, ok = queryUint(c, "tenant_id"); !ok {
		return
	}
	if f.Status, ok = queryEnum(c, "status", model.ParsePaymentStatus); !ok {
		return
	}
	if f.DueFrom, ok = queryDate(c, "from"); !ok {
		return
	}
	if f.DueTo, ok = queryDate(c, "to"); !ok {
		return
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, payments, p.Page, p.Limit, total))
}

// @Summary      Get payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  response.Response{data=model.Payment}
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// CreatePayment records a one-off charge outside the lease schedule
// @Summary      Create payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePaymentRequest  true  "Payment"
// @Success      201      {object}  response.Response{data=model.Payment}
// @Failure      400      {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	payment, err := h.paymentService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// UpdatePaymentStatus moves a payment to a new status. Paid and cancelled are final.
// @Summary      Update payment status
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                                 true  "Payment ID"
// @Param        payload  body      service.UpdatePaymentStatusRequest  true  "Status"
// @Success      200      {object}  response.Response{data=model.Payment}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/payments/{id}/status [put]
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.updateStatus(c, id, req)
}

type markPaidRequest struct {
	Reference string `json:"reference" binding:"max=100"`
	Notes     string `json:"notes"`
}

// MarkPaid confirms receipt of a payment
// @Summary      Mark payment paid
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int              true   "Payment ID"
// @Param        payload  body      markPaidRequest  false  "Receipt reference"
// @Success      200      {object}  response.Response{data=model.Payment}
// @Failure      409      {object}  response.Response
// @Router       /api/payments/{id}/mark-paid [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req markPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	h.updateStatus(c, id, service.UpdatePaymentStatusRequest{
		Status:    model.PaymentPaid.String(),
		Reference: req.Reference,
		Notes:     req.Notes,
	})
}

func (h *PaymentHandler) updateStatus(c *gin.Context, id uint, req service.UpdatePaymentStatusRequest) {
	payment, err := h.paymentService.UpdateStatus(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}
