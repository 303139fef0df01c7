package handler

import (
	"net/http"

	"backoffice/internal/apperr"
	"backoffice/internal/middleware"
	"backoffice/internal/permission"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const forgotPasswordMessage = "If the email is registered, a reset link has been sent"

type AuthHandler struct {
	authService   service.AuthService
	accessService service.AccessService
}

func NewAuthHandler(authService service.AuthService, accessService service.AccessService) *AuthHandler {
	return &AuthHandler{authService: authService, accessService: accessService}
}

// RegisterRoutes mounts the public endpoints on public and the session endpoints on authed.
func (h *AuthHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	open := public.Group("/api/auth")
	{
		open.POST("/login", h.Login)
		open.POST("/forgot-password", h.ForgotPassword)
		open.POST("/reset-password", h.ResetPassword)
	}

	me := authed.Group("/api/auth")
	{
		me.GET("/me", h.GetMe)
		me.GET("/me/menus", h.GetMyMenus)
		me.GET("/me/permissions", h.GetMyPermissions)
		me.POST("/change-password", h.ChangePassword)
		me.POST("/logout", h.Logout)
	}
}

// Login authenticates by email and password and returns a JWT
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tokenRes, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, tokenRes.Token, tokenRes.ExpiresAt)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout clears the session cookie. Bearer tokens stay valid until they expire.
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Logged out", nil))
}

// GetMe returns the authenticated user
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// GetMyMenus returns the navigation tree the caller's role can see
// @Summary      Get my menus
// @Description  Menus the role can view, with the ancestors needed to reach them
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]permission.Node}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me/menus [get]
func (h *AuthHandler) GetMyMenus(c *gin.Context) {
	nodes, err := h.accessService.ResolveAccessibleMenus(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		// Navigation degrades to an empty menu rather than failing the page.
		middleware.Logger(c).Warn("menu resolution failed", zap.Error(err))
		if !apperr.Is(err, apperr.KindNotFound) {
			respondError(c, err)
			return
		}
		nodes = []permission.Node{}
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nodes))
}

// GetMyPermissions returns the caller's flat permission list
// @Summary      Get my permissions
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]permission.Permission}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me/permissions [get]
func (h *AuthHandler) GetMyPermissions(c *gin.Context) {
	perms, err := h.accessService.ResolveFlatPermissions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			respondError(c, err)
			return
		}
		perms = []permission.Permission{}
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

// ChangePassword changes the caller's password after checking the current one
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.UserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Password changed", nil))
}

// ForgotPassword sends a reset link. The answer never reveals whether the email exists.
// @Summary      Forgot password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ForgotPasswordRequest  true  "Email"
// @Success      200      {object}  response.Response
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.authService.ForgotPassword(c.Request.Context(), req); err != nil {
		middleware.Logger(c).Error("forgot password failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, forgotPasswordMessage, nil))
}

// ResetPassword sets a new password using a token from the reset email
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ResetPasswordRequest  true  "Token and new password"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Password has been reset", nil))
}
