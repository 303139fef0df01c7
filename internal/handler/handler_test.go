package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/permission"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

type stubUsers map[uint]*model.User

func (s stubUsers) FindByIDWithRole(_ context.Context, id uint) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// grants maps "url:kind" to allowed
type grants map[string]bool

func (g grants) CheckAccessByURL(_ context.Context, _ uint, url string, kind model.PermissionKind) bool {
	return g[url+":"+kind.String()]
}

type testEnv struct {
	router *gin.Engine
	public *gin.RouterGroup
	authed *gin.RouterGroup
	guard  *middleware.Guard
	token  string
}

func newEnv(t *testing.T, g grants) *testEnv {
	t.Helper()
	issuer := token.NewIssuer("test-secret", time.Hour)
	roleID := uint(2)
	users := stubUsers{7: {ID: 7, Email: "staff@example.com", RoleID: &roleID, Role: &model.Role{ID: 2, Name: "staff"}, Status: model.UserStatusActive}}
	tok, _, err := issuer.Issue(7, roleID, "staff@example.com")
	require.NoError(t, err)

	r := gin.New()
	return &testEnv{
		router: r,
		public: r.Group(""),
		authed: r.Group("", middleware.Authenticate(issuer, users)),
		guard:  middleware.NewGuard(g, nil),
		token:  tok,
	}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("bad date"), http.StatusBadRequest, "bad date"},
		{apperr.Unauthorized("no"), http.StatusUnauthorized, "no"},
		{apperr.Forbidden("not yours"), http.StatusForbidden, "not yours"},
		{apperr.NotFound("Role not found"), http.StatusNotFound, "Role not found"},
		{apperr.Conflict("exists"), http.StatusConflict, "exists"},
		{apperr.Internal(errors.New("dial tcp: refused"), "failed to list"), http.StatusInternalServerError, "failed to list"},
		{errors.New("raw driver error"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { respondError(c, tc.err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, tc.status, w.Code)
		env := decode(t, w)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, tc.msg, env.Message)
		assert.NotContains(t, w.Body.String(), "refused")
	}
}

type fakeRoleService struct {
	service.RoleService
	gotActor uint
	gotRole  uint
	gotPerms []service.MenuPermissionInput
}

func (f *fakeRoleService) SetMenuPermissions(_ context.Context, actorID, roleID uint, perms []service.MenuPermissionInput) ([]permission.Permission, error) {
	f.gotActor, f.gotRole, f.gotPerms = actorID, roleID, perms
	if roleID == 404 {
		return nil, apperr.NotFound("Role not found")
	}
	out := make([]permission.Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, permission.Permission{MenuID: p.MenuID, Flags: permission.Flags{CanView: p.CanView}})
	}
	return out, nil
}

func TestSetMenuPermissions(t *testing.T) {
	roles := &fakeRoleService{}
	env := newEnv(t, grants{"/roles:update": true})
	NewRoleHandler(roles, env.guard).RegisterRoutes(env.authed)

	body := gin.H{"permissions": []gin.H{{"menu_id": 3, "can_view": true}, {"menu_id": 4, "can_view": false}}}
	w := env.do(http.MethodPut, "/api/roles/5/menu-permissions", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, uint(7), roles.gotActor)
	assert.Equal(t, uint(5), roles.gotRole)
	require.Len(t, roles.gotPerms, 2)
	assert.True(t, roles.gotPerms[0].CanView)

	w = env.do(http.MethodPut, "/api/roles/404/menu-permissions", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPut, "/api/roles/abc/menu-permissions", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoleRoutesRequireGrant(t *testing.T) {
	roles := &fakeRoleService{}
	env := newEnv(t, grants{"/roles:view": true})
	NewRoleHandler(roles, env.guard).RegisterRoutes(env.authed)

	w := env.do(http.MethodPut, "/api/roles/5/menu-permissions", gin.H{"permissions": []gin.H{}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, roles.gotRole)

	env.token = ""
	w = env.do(http.MethodPut, "/api/roles/5/menu-permissions", gin.H{"permissions": []gin.H{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeAccess struct {
	service.AccessService
	menusErr error
	nodes    []permission.Node
}

func (f *fakeAccess) ResolveAccessibleMenus(context.Context, uint) ([]permission.Node, error) {
	return f.nodes, f.menusErr
}

type fakeAuth struct {
	service.AuthService
	forgotErr error
	forgotHit bool
	login     *service.TokenResponse
}

func (f *fakeAuth) ForgotPassword(context.Context, service.ForgotPasswordRequest) error {
	f.forgotHit = true
	return f.forgotErr
}

func (f *fakeAuth) Login(_ context.Context, req service.LoginUserRequest) (*service.TokenResponse, error) {
	if req.Password != "right-password" {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	return f.login, nil
}

func TestMyMenusDegradesToEmptyForest(t *testing.T) {
	env := newEnv(t, nil)
	access := &fakeAccess{menusErr: apperr.NotFound("User not found")}
	NewAuthHandler(&fakeAuth{}, access).RegisterRoutes(env.public, env.authed)

	w := env.do(http.MethodGet, "/api/auth/me/menus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(decode(t, w).Data))

	access.menusErr = nil
	access.nodes = []permission.Node{{ID: 1, Title: "Dashboard", URL: "/dashboard"}}
	w = env.do(http.MethodGet, "/api/auth/me/menus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"url":"/dashboard"`)
}

func TestForgotPasswordAlwaysSucceeds(t *testing.T) {
	env := newEnv(t, nil)
	auth := &fakeAuth{forgotErr: errors.New("smtp down")}
	NewAuthHandler(auth, &fakeAccess{}).RegisterRoutes(env.public, env.authed)

	w := env.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, auth.forgotHit)
	assert.Equal(t, forgotPasswordMessage, decode(t, w).Message)

	w = env.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsCookie(t *testing.T) {
	env := newEnv(t, nil)
	auth := &fakeAuth{login: &service.TokenResponse{Token: "signed", ExpiresAt: time.Now().Add(time.Hour)}}
	NewAuthHandler(auth, &fakeAccess{}).RegisterRoutes(env.public, env.authed)

	w := env.do(http.MethodPost, "/api/auth/login", gin.H{"email": "a@example.com", "password": "right-password"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=signed")

	w = env.do(http.MethodPost, "/api/auth/login", gin.H{"email": "a@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

type fakeComplaints struct {
	service.ComplaintReportService
}

func (fakeComplaints) UpdateStatus(_ context.Context, _, id uint, req service.UpdateComplaintReportRequest) (*model.ComplaintReport, error) {
	if req.Title != nil {
		return nil, apperr.Validation("Only status can be updated")
	}
	status, err := model.ParseComplaintReportStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return &model.ComplaintReport{ID: id, Status: status}, nil
}

func TestUpdateComplaintReport(t *testing.T) {
	env := newEnv(t, grants{"/complaint-reports:update": true})
	NewComplaintHandler(fakeComplaints{}, env.guard).RegisterRoutes(env.authed)

	w := env.do(http.MethodPut, "/api/complaint-reports/9", gin.H{"title": "new title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only status can be updated", decode(t, w).Message)

	w = env.do(http.MethodPut, "/api/complaint-reports/9", gin.H{"status": "resolved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"status":"resolved"`)

	w = env.do(http.MethodPut, "/api/complaint-reports/9", gin.H{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakePayments struct {
	service.PaymentService
	got service.UpdatePaymentStatusRequest
}

func (f *fakePayments) UpdateStatus(_ context.Context, _, id uint, req service.UpdatePaymentStatusRequest) (*model.Payment, error) {
	f.got = req
	return &model.Payment{ID: id, Status: model.PaymentPaid}, nil
}

func TestMarkPaidNeedsConfirm(t *testing.T) {
	payments := &fakePayments{}
	env := newEnv(t, grants{"/payments:update": true})
	NewPaymentHandler(payments, env.guard).RegisterRoutes(env.authed)

	w := env.do(http.MethodPost, "/api/payments/3/mark-paid", gin.H{"reference": "TX-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	env = newEnv(t, grants{"/payments:confirm": true})
	NewPaymentHandler(payments, env.guard).RegisterRoutes(env.authed)
	w = env.do(http.MethodPost, "/api/payments/3/mark-paid", gin.H{"reference": "TX-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "paid", payments.got.Status)
	assert.Equal(t, "TX-1", payments.got.Reference)
}

func TestListPaymentsRejectsBadFilters(t *testing.T) {
	env := newEnv(t, grants{"/payments:view": true})
	NewPaymentHandler(&fakePayments{}, env.guard).RegisterRoutes(env.authed)

	w := env.do(http.MethodGet, "/api/payments?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodGet, "/api/payments?from=03/01/2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeDashboard struct {
	service.DashboardService
}

func (fakeDashboard) ExportPayments(_ context.Context, from, _ string) ([]byte, error) {
	if from == "bad" {
		return nil, apperr.Validation("from must be YYYY-MM-DD")
	}
	return []byte("PK\x03\x04"), nil
}

func TestExportPayments(t *testing.T) {
	env := newEnv(t, grants{"/payments:view": true})
	NewDashboardHandler(fakeDashboard{}, env.guard).RegisterRoutes(env.authed)

	w := env.do(http.MethodGet, "/api/dashboard/payments/export?from=2026-03-01&to=2026-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	assert.Equal(t, "PK\x03\x04", w.Body.String())

	w = env.do(http.MethodGet, "/api/dashboard/payments/export?from=bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeUserTasks struct {
	service.UserTaskService
	gotUser *uint
}

func (f *fakeUserTasks) List(_ context.Context, filter repository.UserTaskFilter, _ pagination.Params) ([]model.UserTask, int64, error) {
	f.gotUser = filter.UserID
	return []model.UserTask{}, 0, nil
}

func TestListMyUserTasksScopesToCaller(t *testing.T) {
	tasks := &fakeUserTasks{}
	env := newEnv(t, nil)
	NewUserTaskHandler(tasks, env.guard).RegisterRoutes(env.authed)

	w := env.do(http.MethodGet, "/api/user-tasks/mine?user_id=99", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, tasks.gotUser)
	assert.Equal(t, uint(7), *tasks.gotUser)

	w = env.do(http.MethodGet, "/api/user-tasks?user_id=99", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type fakeUploads struct {
	service.UploadService
}

func TestUploadRequiresMultipart(t *testing.T) {
	env := newEnv(t, nil)
	NewUploadHandler(fakeUploads{}).RegisterRoutes(env.authed)

	w := env.do(http.MethodPost, "/api/uploads/avatars", gin.H{"file": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeReminders struct {
	service.ReminderService
}

func (fakeReminders) Run(context.Context, uint) (*service.ReminderResult, error) {
	return &service.ReminderResult{Due: 2, Sent: 2}, nil
}

func TestInternalRemindNeedsBasicAuth(t *testing.T) {
	r := gin.New()
	NewInternalHandler(fakeReminders{}).RegisterRoutes(r.Group("", middleware.InternalBasicAuth("cron", "s3cret")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/internal/payments/remind", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/internal/payments/remind", nil)
	req.SetBasicAuth("cron", "s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"sent":2`)
}
