package middleware

import (
	"context"
	"net/http"

	"backoffice/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// AccessChecker is the slice of the access service the middleware needs.
type AccessChecker interface {
	CheckAccessByURL(ctx context.Context, userID uint, url string, kind model.PermissionKind) bool
}

// Guard builds RequireAccess handlers sharing one checker and denial counter.
type Guard struct {
	access AccessChecker
	denied *prometheus.CounterVec
}

// NewGuard creates a Guard. denied may be nil.
func NewGuard(access AccessChecker, denied *prometheus.CounterVec) *Guard {
	return &Guard{access: access, denied: denied}
}

// RequireAccess lets the request through only when the caller's role holds kind on the menu
// registered under menuURL. Must run after Authenticate.
func (g *Guard) RequireAccess(menuURL string, kind model.PermissionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserID(c)
		if uid == 0 {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !g.access.CheckAccessByURL(c.Request.Context(), uid, menuURL, kind) {
			if g.denied != nil {
				g.denied.WithLabelValues(menuURL, kind.String()).Inc()
			}
			Logger(c).Info("access denied",
				zap.Uint("user_id", uid),
				zap.String("menu", menuURL),
				zap.Stringer("kind", kind))
			abort(c, http.StatusForbidden, "Access denied: missing "+kind.String()+" permission on "+menuURL)
			return
		}
		c.Next()
	}
}
