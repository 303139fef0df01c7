package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/mailer"
	"backoffice/internal/model"
	"backoffice/internal/store"
	"backoffice/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type captureMailer struct{ sent []mailer.Message }

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type userAndAuth interface {
	UserService
	AuthService
}

type userFixture struct {
	svc    userAndAuth
	users  *fakeUsers
	mail   *captureMailer
	issuer *token.Issuer
	audit  *fakeAudit
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newUserFixture(t *testing.T) userFixture {
	role := uint(2)
	fx := userFixture{
		users: newFakeUsers(
			model.User{ID: 1, Name: "Ops", Email: "ops@example.com", Password: hashed(t, "correct-horse"), RoleID: &role, Status: model.UserStatusActive},
			model.User{ID: 2, Name: "Gone", Email: "gone@example.com", Password: hashed(t, "correct-horse"), Status: model.UserStatusSuspended},
		),
		mail:   &captureMailer{},
		issuer: token.NewIssuer("test-secret", time.Hour),
		audit:  &fakeAudit{},
	}
	fx.svc = NewUserService(UserServiceDeps{
		TxManager: &fakeTx{},
		Users:     fx.users,
		Roles:     newFakeRoles(model.Role{ID: 2, Name: "staff"}),
		Audit:     fx.audit,
		Issuer:    fx.issuer,
		Resets:    store.NewMemoryStore(),
		Mailer:    fx.mail,
		ResetURL:  "https://app.example.com/reset-password",
		Log:       zap.NewNop(),
	})
	return fx
}

func TestLogin(t *testing.T) {
	fx := newUserFixture(t)
	ctx := context.Background()

	resp, err := fx.svc.Login(ctx, LoginUserRequest{Email: " OPS@example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	claims, err := fx.issuer.Parse(resp.Token)
	require.NoError(t, err)
	uid, _ := claims.UserID()
	assert.Equal(t, uint(1), uid)
	assert.Equal(t, uint(2), claims.RoleID)
	assert.NotNil(t, fx.users.byID[1].LastLoginAt)

	_, err = fx.svc.Login(ctx, LoginUserRequest{Email: "ops@example.com", Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = fx.svc.Login(ctx, LoginUserRequest{Email: "nobody@example.com", Password: "x"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = fx.svc.Login(ctx, LoginUserRequest{Email: "gone@example.com", Password: "correct-horse"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestForgotAndResetPassword(t *testing.T) {
	fx := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "nobody@example.com"}))
	assert.Empty(t, fx.mail.sent)

	require.NoError(t, fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "ops@example.com"}))
	require.Len(t, fx.mail.sent, 1)
	body := fx.mail.sent[0].HTML
	i := strings.Index(body, "?token=")
	require.True(t, i > 0)
	resetToken := body[i+len("?token=") : i+len("?token=")+36]

	require.NoError(t, fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: resetToken, NewPassword: "battery-staple"}))
	_, err := fx.svc.Login(ctx, LoginUserRequest{Email: "ops@example.com", Password: "battery-staple"})
	require.NoError(t, err)

	err = fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: resetToken, NewPassword: "another-one"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	fx := newUserFixture(t)
	ctx := context.Background()

	err := fx.svc.ChangePassword(ctx, 1, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "battery-staple"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, fx.svc.ChangePassword(ctx, 1, ChangePasswordRequest{CurrentPassword: "correct-horse", NewPassword: "battery-staple"}))
	assert.Equal(t, []string{model.ActionResetPassword}, fx.audit.actions())
}

func TestCreateUser(t *testing.T) {
	fx := newUserFixture(t)
	ctx := context.Background()
	role := uint(2)

	resp, err := fx.svc.CreateUser(ctx, 1, CreateUserRequest{Name: "New", Email: "New@Example.com", Password: "long-enough", RoleID: &role})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, model.UserStatusActive, resp.Status)

	_, err = fx.svc.CreateUser(ctx, 1, CreateUserRequest{Name: "Dup", Email: "ops@example.com", Password: "long-enough"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	missing := uint(99)
	_, err = fx.svc.CreateUser(ctx, 1, CreateUserRequest{Name: "X", Email: "x@example.com", Password: "long-enough", RoleID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = fx.svc.CreateUser(ctx, 1, CreateUserRequest{Name: "Y", Email: "y@example.com", Password: "long-enough", Status: "sleeping"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestActorCannotDeleteThemselves(t *testing.T) {
	fx := newUserFixture(t)

	err := fx.svc.DeleteUser(context.Background(), 1, 1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	require.NoError(t, fx.svc.DeleteUser(context.Background(), 1, 2))
}
