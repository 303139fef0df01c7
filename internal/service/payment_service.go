package service

import (
	"context"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	TenantID  uint            `json:"tenant_id" binding:"required"`
	LeaseID   *uint           `json:"lease_id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"due_date" binding:"required"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes"`
}

type UpdatePaymentStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	Reference string `json:"reference" binding:"max=100"`
	Notes     string `json:"notes"`
}

type PaymentService interface {
	List(ctx context.Context, f repository.PaymentFilter, p pagination.Params) ([]model.Payment, int64, error)
	Get(ctx context.Context, id uint) (*model.Payment, error)
	Create(ctx context.Context, actorID uint, req CreatePaymentRequest) (*model.Payment, error)
	UpdateStatus(ctx context.Context, actorID, id uint, req UpdatePaymentStatusRequest) (*model.Payment, error)
}

type paymentService struct {
	txManager repository.TransactionManager
	payments  repository.PaymentRepository
	tenants   repository.TenantRepository
	audit     auditor
	now       func() time.Time
}

func NewPaymentService(
	txManager repository.TransactionManager,
	payments repository.PaymentRepository,
	tenants repository.TenantRepository,
	auditRepo repository.AuditRepository,
) PaymentService {
	return &paymentService{
		txManager: txManager,
		payments:  payments,
		tenants:   tenants,
		audit:     auditor{repo: auditRepo},
		now:       time.Now,
	}
}

func (s *paymentService) List(ctx context.Context, f repository.PaymentFilter, p pagination.Params) ([]model.Payment, int64, error) {
	items, total, err := s.payments.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list payments")
	}
	return items, total, nil
}

func (s *paymentService) Get(ctx context.Context, id uint) (*model.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Payment not found")
	}
	return p, nil
}

func (s *paymentService) Create(ctx context.Context, actorID uint, req CreatePaymentRequest) (*model.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.tenants.FindByID(ctx, req.TenantID); err != nil {
		return nil, validationIfMissing(err, "Tenant not found")
	}

	p := model.Payment{
		TenantID:  req.TenantID,
		LeaseID:   req.LeaseID,
		Amount:    req.Amount,
		DueDate:   due,
		Status:    model.PaymentPending,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payments.Create(txCtx, &p); err != nil {
			return apperr.Internal(err, "failed to create payment")
		}
		return s.audit.record(txCtx, actorID, model.ActionCreatePayment, "payment", p.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatus moves a payment between statuses. Paid and cancelled payments are settled and
// cannot change again.
func (s *paymentService) UpdateStatus(ctx context.Context, actorID, id uint, req UpdatePaymentStatusRequest) (*model.Payment, error) {
	status, err := model.ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Payment not found")
	}
	if p.Status == model.PaymentPaid || p.Status == model.PaymentCancelled {
		return nil, apperr.Conflict("Payment is already %s", p.Status)
	}

	p.Status = status
	if status == model.PaymentPaid {
		now := s.now()
		p.PaidAt = &now
	}
	if req.Reference != "" {
		p.Reference = req.Reference
	}
	if req.Notes != "" {
		p.Notes = req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payments.Update(txCtx, p); err != nil {
			return apperr.Internal(err, "failed to update payment")
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdatePaymentStatus, "payment", p.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
