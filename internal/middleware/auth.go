package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/response"
	"backoffice/pkg/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserLookup loads the user behind a token together with its role.
type UserLookup interface {
	FindByIDWithRole(ctx context.Context, id uint) (*model.User, error)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, response.Error(status, msg))
}

const accessTokenCookie = "access_token"

// SetTokenCookie mirrors the access token into an HttpOnly cookie for browser clients.
func SetTokenCookie(c *gin.Context, tok string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, tok, maxAge, "/", "", c.Request.TLS != nil, true)
}

func ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}

// bearerToken reads the Authorization header, falling back to the access_token cookie.
func bearerToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// Authenticate validates the JWT, reloads the user and stores id, role id and role name in the
// context. The role name always comes from the database, never from the token.
func Authenticate(issuer *token.Issuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authorization is missing or malformed. Expected 'Bearer <token>'")
			return
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		uid, err := claims.UserID()
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid token subject")
			return
		}

		user, err := users.FindByIDWithRole(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abort(c, http.StatusUnauthorized, "User no longer exists")
				return
			}
			Logger(c).Error("failed to load authenticated user", zap.Uint("user_id", uid), zap.Error(err))
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user.Status != model.UserStatusActive {
			abort(c, http.StatusForbidden, "Account is "+user.Status.String())
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxEmail, user.Email)
		if user.RoleID != nil {
			c.Set(ctxRoleID, *user.RoleID)
		}
		if user.Role != nil {
			c.Set(ctxRoleName, user.Role.Name)
		}
		c.Next()
	}
}

// InternalBasicAuth guards machine-to-machine routes. With no credentials configured every
// request is rejected.
func InternalBasicAuth(user, pass string) gin.HandlerFunc {
	if user == "" || pass == "" {
		return func(c *gin.Context) {
			abort(c, http.StatusUnauthorized, "Internal API credentials are not configured")
		}
	}
	return gin.BasicAuth(gin.Accounts{user: pass})
}
