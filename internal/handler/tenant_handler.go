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

type TenantHandler struct {
	tenantService  service.TenantService
	paymentService service.PaymentService
	guard          *middleware.Guard
}

func NewTenantHandler(tenantService service.TenantService, paymentService service.PaymentService, guard *middleware.Guard) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, paymentService: paymentService, guard: guard}
}

func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	tenants := router.Group("/api/tenants")
	{
		tenants.GET("", h.guard.RequireAccess(model.MenuURLTenants, model.PermView), h.ListTenants)
		tenants.GET("/:id", h.guard.RequireAccess(model.MenuURLTenants, model.PermView), h.GetTenant)
		tenants.POST("", h.guard.RequireAccess(model.MenuURLTenants, model.PermCreate), h.CreateTenant)
		tenants.PUT("/:id", h.guard.RequireAccess(model.MenuURLTenants, model.PermUpdate), h.UpdateTenant)
		tenants.DELETE("/:id", h.guard.RequireAccess(model.MenuURLTenants, model.PermDelete), h.DeleteTenant)
		tenants.GET("/:id/payments", h.guard.RequireAccess(model.MenuURLPayments, model.PermView), h.ListTenantPayments)
		tenants.POST("/:id/leases", h.guard.RequireAccess(model.MenuURLTenants, model.PermCreate), h.AddLease)
	}

	leases := router.Group("/api/leases")
	{
		leases.POST("/:id/end", h.guard.RequireAccess(model.MenuURLTenants, model.PermConfirm), h.EndLease)
	}
}

// ListTenants returns tenants with their active leases
// @Summary      List tenants
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Name, company or email contains"
// @Success      200     {object}  response.Response{data=[]model.Tenant}
// @Router       /api/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	p := pagination.Parse(c)
	tenants, total, err := h.tenantService.List(c.Request.Context(), strings.TrimSpace(c.Query("search")), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, tenants, p.Page, p.Limit, total))
}

// @Summary      Get tenant
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=model.Tenant}
// @Failure      404  {object}  response.Response
// @Router       /api/tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// CreateTenant stores a tenant; an embedded lease also creates its payment schedule
// @Summary      Create tenant
// @Tags         tenants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTenantRequest  true  "Tenant with optional lease"
// @Success      201      {object}  response.Response{data=model.Tenant}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/tenants [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req service.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tenant, err := h.tenantService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tenant))
}

// @Summary      Update tenant
// @Tags         tenants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                          true  "Tenant ID"
// @Param        payload  body      service.UpdateTenantRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Tenant}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tenants/{id} [put]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tenant, err := h.tenantService.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// @Summary      Delete tenant
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Tenant ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/tenants/{id} [delete]
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.tenantService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Tenant deleted successfully", nil))
}

// ListTenantPayments returns the tenant's payments, earliest due first
// @Summary      List tenant payments
// @Tags         tenants
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      int     true   "Tenant ID"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "pending, paid, overdue or cancelled"
// @Success      200     {object}  response.Response{data=[]model.Payment}
// @Failure      404     {object}  response.Response
// @Router       /api/tenants/{id}/payments [get]
func (h *TenantHandler) ListTenantPayments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	status, ok := queryEnum(c, "status", model.ParsePaymentStatus)
	if !ok {
		return
	}
	if _, err := h.tenantService.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	p := pagination.Parse(c)
	payments, total, err := h.paymentService.List(c.Request.Context(), repository.PaymentFilter{TenantID: &id, Status: status}, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, payments, p.Page, p.Limit, total))
}

// AddLease starts a lease for an existing tenant
// @Summary      Add lease
// @Tags         tenants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Tenant ID"
// @Param        payload  body      service.LeaseRequest  true  "Lease"
// @Success      201      {object}  response.Response{data=model.Lease}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/tenants/{id}/leases [post]
func (h *TenantHandler) AddLease(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.LeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lease, err := h.tenantService.AddLease(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lease))
}

// EndLease closes an active lease as ended or terminated
// @Summary      End lease
// @Tags         tenants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Lease ID"
// @Param        payload  body      service.EndLeaseRequest  true  "Final status"
// @Success      200      {object}  response.Response{data=model.Lease}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/leases/{id}/end [post]
func (h *TenantHandler) EndLease(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.EndLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lease, err := h.tenantService.EndLease(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lease))
}
