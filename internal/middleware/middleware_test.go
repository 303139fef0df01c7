package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type stubUsers map[uint]*model.User

func (s stubUsers) FindByIDWithRole(_ context.Context, id uint) (*model.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type stubAccess map[string]bool

func (s stubAccess) CheckAccessByURL(_ context.Context, _ uint, url string, kind model.PermissionKind) bool {
	return s[url+":"+kind.String()]
}

func init() { gin.SetMode(gin.TestMode) }

func testUsers() stubUsers {
	role := uint(3)
	return stubUsers{
		1: {ID: 1, Email: "ops@example.com", RoleID: &role, Role: &model.Role{ID: 3, Name: "manager"}, Status: model.UserStatusActive},
		2: {ID: 2, Email: "off@example.com", Status: model.UserStatusInactive},
	}
}

func send(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour)
	r := gin.New()
	r.GET("/me", Authenticate(issuer, testUsers()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role_id": RoleID(c), "role": RoleName(c)})
	})

	bearer := func(uid uint) string {
		signed, _, err := issuer.Issue(uid, 99, "x@example.com")
		require.NoError(t, err)
		return "Bearer " + signed
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"unknown user", bearer(42), http.StatusUnauthorized},
		{"inactive user", bearer(2), http.StatusForbidden},
		{"ok", bearer(1), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := send(r, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(1))
	w := send(r, req)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// role comes from the database, not the token's roleId claim
	assert.Equal(t, float64(3), body["role_id"])
	assert.Equal(t, "manager", body["role"])
}

func TestAuthenticateAcceptsCookie(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour)
	r := gin.New()
	r.GET("/me", Authenticate(issuer, testUsers()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	signed, _, err := issuer.Issue(1, 3, "ops@example.com")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signed})
	assert.Equal(t, http.StatusNoContent, send(r, req).Code)
}

func TestRequireAccess(t *testing.T) {
	denied := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "denied_total"}, []string{"menu", "kind"})
	guard := NewGuard(stubAccess{"/assets:view": true}, denied)

	r := gin.New()
	withUser := func(c *gin.Context) { c.Set(ctxUserID, uint(1)) }
	r.GET("/assets", withUser, guard.RequireAccess("/assets", model.PermView), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.DELETE("/assets", withUser, guard.RequireAccess("/assets", model.PermDelete), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/anon", guard.RequireAccess("/assets", model.PermView), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, send(r, httptest.NewRequest(http.MethodGet, "/assets", nil)).Code)
	assert.Equal(t, http.StatusForbidden, send(r, httptest.NewRequest(http.MethodDelete, "/assets", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(denied.WithLabelValues("/assets", "delete")))
}

func TestInternalBasicAuth(t *testing.T) {
	r := gin.New()
	r.POST("/internal", InternalBasicAuth("cron", "s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/closed", InternalBasicAuth("", ""), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/internal", nil)
	assert.Equal(t, http.StatusUnauthorized, send(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/internal", nil)
	req.SetBasicAuth("cron", "s3cret")
	assert.Equal(t, http.StatusOK, send(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/closed", nil)
	req.SetBasicAuth("", "")
	assert.Equal(t, http.StatusUnauthorized, send(r, req).Code)
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := send(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = send(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = send(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")

	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	assert.Equal(t, 3, logs.FilterMessage("request").Len())
}
