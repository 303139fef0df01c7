package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/mailer"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/store"
	"backoffice/pkg/pagination"
	"backoffice/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	RoleID   *uint  `json:"role_id"`
	Status   string `json:"status"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=255"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Phone  *string `json:"phone"`
	RoleID *uint   `json:"role_id"`
	Status *string `json:"status"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	RoleID      *uint            `json:"role_id"`
	Role        string           `json:"role"`
	Status      model.UserStatus `json:"status"`
	AvatarURL   string           `json:"avatar_url"`
	LastLoginAt *time.Time       `json:"last_login_at"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, actorID uint, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uint) (*UserResponse, error)
	ListUsers(ctx context.Context, f repository.UserFilter, p pagination.Params) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actorID, id uint, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id uint) error
}

// AuthService covers login and the self-service password flows
type AuthService interface {
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	Me(ctx context.Context, userID uint) (*UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error
	// ForgotPassword never reveals whether the address belongs to an account.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userService struct {
	txManager repository.TransactionManager
	repo      repository.UserRepository
	roles     repository.RoleRepository
	audit     auditor
	issuer    *token.Issuer
	resets    store.ResetTokenStore
	mail      mailer.Mailer
	resetURL  string
	log       *zap.Logger
	now       func() time.Time
}

type UserServiceDeps struct {
	TxManager repository.TransactionManager
	Users     repository.UserRepository
	Roles     repository.RoleRepository
	Audit     repository.AuditRepository
	Issuer    *token.Issuer
	Resets    store.ResetTokenStore
	Mailer    mailer.Mailer
	// ResetURL is the front-end page that receives ?token=
	ResetURL string
	Log      *zap.Logger
}

// NewUserService returns the implementation behind both UserService and AuthService
func NewUserService(d UserServiceDeps) interface {
	UserService
	AuthService
} {
	return &userService{
		txManager: d.TxManager,
		repo:      d.Users,
		roles:     d.Roles,
		audit:     auditor{repo: d.Audit},
		issuer:    d.Issuer,
		resets:    d.Resets,
		mail:      d.Mailer,
		resetURL:  d.ResetURL,
		log:       d.Log.Named("user"),
		now:       time.Now,
	}
}

func mapToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		RoleID:      user.RoleID,
		Status:      user.Status,
		AvatarURL:   user.AvatarURL,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   user.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if user.Role != nil {
		resp.Role = user.Role.Name
	}
	return resp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) CreateUser(ctx context.Context, actorID uint, req CreateUserRequest) (*UserResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	status := model.UserStatusActive
	if req.Status != "" {
		parsed, err := model.ParseUserStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	if err := s.ensureRole(ctx, req.RoleID); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	user := model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		RoleID:   req.RoleID,
		Status:   status,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &user); err != nil {
			return apperr.Internal(err, "failed to create user")
		}
		return s.audit.record(txCtx, actorID, model.ActionCreateUser, "user", user.ID,
			map[string]interface{}{"email": user.Email, "role_id": user.RoleID, "status": user.Status})
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, user.ID)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.FindByIDWithRole(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "User not found")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, f repository.UserFilter, p pagination.Params) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list users")
	}
	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *mapToResponse(&users[i]))
	}
	return res, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, id uint, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "User not found")
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	setIf(&user.Phone, req.Phone)
	if req.Status != nil {
		status, err := model.ParseUserStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if actorID == id && status != model.UserStatusActive {
			return nil, apperr.Validation("You cannot deactivate your own account")
		}
		user.Status = status
	}
	if req.RoleID != nil {
		roleID := *req.RoleID
		if roleID == 0 {
			user.RoleID = nil
		} else {
			if err := s.ensureRole(ctx, &roleID); err != nil {
				return nil, err
			}
			user.RoleID = &roleID
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, user); err != nil {
			return apperr.Internal(err, "failed to update user")
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateUser, "user", user.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return apperr.Validation("You cannot delete your own account")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return apperr.FromRepo(err, "User not found")
		}
		return s.audit.record(txCtx, actorID, model.ActionDeleteUser, "user", id, nil)
	})
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, apperr.Internal(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if user.Status != model.UserStatusActive {
		return nil, apperr.Forbidden("Account is %s", user.Status)
	}

	var roleID uint
	if user.RoleID != nil {
		roleID = *user.RoleID
	}
	signed, expires, err := s.issuer.Issue(user.ID, roleID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err, "failed to generate token")
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return &TokenResponse{Token: signed, ExpiresAt: expires, User: mapToResponse(user)}, nil
}

func (s *userService) Me(ctx context.Context, userID uint) (*UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return apperr.FromRepo(err, "User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperr.Validation("Current password is incorrect")
	}
	return s.setPassword(ctx, userID, userID, req.NewPassword)
}

func (s *userService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("forgot password lookup failed", zap.Error(err))
		}
		return nil
	}
	if user.Status != model.UserStatusActive {
		return nil
	}

	resetToken := uuid.NewString()
	if err := s.resets.Save(ctx, resetToken, user.ID, resetTokenTTL); err != nil {
		s.log.Error("failed to store reset token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil
	}
	msg, err := mailer.PasswordReset(user.Email, mailer.PasswordResetData{
		Name:      user.Name,
		Link:      s.resetURL + "?token=" + resetToken,
		ExpiresIn: resetTokenTTL.String(),
	})
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error("failed to send reset email", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	userID, err := s.resets.Consume(ctx, req.Token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return apperr.Validation("Reset token is invalid or has expired")
		}
		return apperr.Internal(err, "failed to read reset token")
	}
	return s.setPassword(ctx, 0, userID, req.NewPassword)
}

func (s *userService) setPassword(ctx context.Context, actorID, userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err, "failed to hash password")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdatePassword(txCtx, userID, string(hash)); err != nil {
			return apperr.Internal(err, "failed to update password")
		}
		return s.audit.record(txCtx, actorID, model.ActionResetPassword, "user", userID, nil)
	})
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.Internal(err, "failed to check email")
	}
	if existing.ID != selfID {
		return apperr.Conflict("Email is already in use")
	}
	return nil
}

func (s *userService) ensureRole(ctx context.Context, roleID *uint) error {
	if roleID == nil {
		return nil
	}
	if _, err := s.roles.FindByID(ctx, *roleID); err != nil {
		return validationIfMissing(err, "Role not found")
	}
	return nil
}
