package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxLeaseMonths = 120

type LeaseRequest struct {
	UnitID        uint            `json:"unit_id" binding:"required"`
	StartDate     string          `json:"start_date" binding:"required"`
	EndDate       string          `json:"end_date" binding:"required"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	Deposit       decimal.Decimal `json:"deposit"`
	PaymentDueDay int             `json:"payment_due_day" binding:"omitempty,min=1,max=31"`
}

type CreateTenantRequest struct {
	Name        string        `json:"name" binding:"required,max=255"`
	CompanyName string        `json:"company_name"`
	Email       string        `json:"email" binding:"omitempty,email"`
	Phone       string        `json:"phone"`
	Notes       string        `json:"notes"`
	Lease       *LeaseRequest `json:"lease"`
}

type UpdateTenantRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	CompanyName *string `json:"company_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Notes       *string `json:"notes"`
}

type EndLeaseRequest struct {
	Status  string `json:"status" binding:"required"`
	EndDate string `json:"end_date"`
}

type TenantService interface {
	List(ctx context.Context, search string, p pagination.Params) ([]model.Tenant, int64, error)
	Get(ctx context.Context, id uint) (*model.Tenant, error)
	// Create stores the tenant and, when a lease is given, the lease and its monthly payment
	// schedule in one transaction.
	Create(ctx context.Context, actorID uint, req CreateTenantRequest) (*model.Tenant, error)
	Update(ctx context.Context, actorID, id uint, req UpdateTenantRequest) (*model.Tenant, error)
	Delete(ctx context.Context, actorID, id uint) error
	AddLease(ctx context.Context, actorID, tenantID uint, req LeaseRequest) (*model.Lease, error)
	EndLease(ctx context.Context, actorID, leaseID uint, req EndLeaseRequest) (*model.Lease, error)
}

type tenantService struct {
	txManager repository.TransactionManager
	tenants   repository.TenantRepository
	leases    repository.LeaseRepository
	units     repository.UnitRepository
	payments  repository.PaymentRepository
	audit     auditor
}

func NewTenantService(
	txManager repository.TransactionManager,
	tenants repository.TenantRepository,
	leases repository.LeaseRepository,
	units repository.UnitRepository,
	payments repository.PaymentRepository,
	auditRepo repository.AuditRepository,
) TenantService {
	return &tenantService{
		txManager: txManager,
		tenants:   tenants,
		leases:    leases,
		units:     units,
		payments:  payments,
		audit:     auditor{repo: auditRepo},
	}
}

func (s *tenantService) List(ctx context.Context, search string, p pagination.Params) ([]model.Tenant, int64, error) {
	items, total, err := s.tenants.List(ctx, search, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list tenants")
	}
	return items, total, nil
}

func (s *tenantService) Get(ctx context.Context, id uint) (*model.Tenant, error) {
	t, err := s.tenants.FindByIDWithLeases(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Tenant not found")
	}
	return t, nil
}

func (s *tenantService) Create(ctx context.Context, actorID uint, req CreateTenantRequest) (*model.Tenant, error) {
	t := model.Tenant{
		Name:        strings.TrimSpace(req.Name),
		CompanyName: req.CompanyName,
		Email:       normalizeEmail(req.Email),
		Phone:       req.Phone,
		Notes:       req.Notes,
	}

	var lease *model.Lease
	if req.Lease != nil {
		l, err := buildLease(*req.Lease)
		if err != nil {
			return nil, err
		}
		lease = l
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenants.Create(txCtx, &t); err != nil {
			return apperr.Internal(err, "failed to create tenant")
		}
		if lease != nil {
			lease.TenantID = t.ID
			if err := s.createLease(txCtx, lease); err != nil {
				return err
			}
		}
		return s.audit.record(txCtx, actorID, model.ActionCreateTenant, "tenant", t.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID)
}

func (s *tenantService) Update(ctx context.Context, actorID, id uint, req UpdateTenantRequest) (*model.Tenant, error) {
	t, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Tenant not found")
	}
	setIf(&t.Name, req.Name)
	setIf(&t.CompanyName, req.CompanyName)
	if req.Email != nil {
		t.Email = normalizeEmail(*req.Email)
	}
	setIf(&t.Phone, req.Phone)
	setIf(&t.Notes, req.Notes)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenants.Update(txCtx, t); err != nil {
			return apperr.Internal(err, "failed to update tenant")
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateTenant, "tenant", t.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *tenantService) Delete(ctx context.Context, actorID, id uint) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenants.Delete(txCtx, id); err != nil {
			return apperr.FromRepo(err, "Tenant not found")
		}
		return s.audit.record(txCtx, actorID, model.ActionDeleteTenant, "tenant", id, nil)
	})
}

func (s *tenantService) AddLease(ctx context.Context, actorID, tenantID uint, req LeaseRequest) (*model.Lease, error) {
	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		return nil, apperr.FromRepo(err, "Tenant not found")
	}
	lease, err := buildLease(req)
	if err != nil {
		return nil, err
	}
	lease.TenantID = tenantID

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.createLease(txCtx, lease); err != nil {
			return err
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateTenant, "lease", lease.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

func (s *tenantService) EndLease(ctx context.Context, actorID, leaseID uint, req EndLeaseRequest) (*model.Lease, error) {
	status, err := model.ParseLeaseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if status == model.LeaseActive {
		return nil, apperr.Validation("status must be ended or terminated")
	}
	lease, err := s.leases.FindByID(ctx, leaseID)
	if err != nil {
		return nil, apperr.FromRepo(err, "Lease not found")
	}
	if lease.Status != model.LeaseActive {
		return nil, apperr.Conflict("Lease is already %s", lease.Status)
	}
	if req.EndDate != "" {
		end, err := parseDate("end_date", req.EndDate)
		if err != nil {
			return nil, err
		}
		if end.Before(lease.StartDate) {
			return nil, apperr.Validation("end_date must not be before the lease start")
		}
		lease.EndDate = end
	}
	lease.Status = status

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.leases.Update(txCtx, lease); err != nil {
			return apperr.Internal(err, "failed to update lease")
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateTenant, "lease", lease.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

// createLease checks the unit is free, stores the lease and its payment schedule.
func (s *tenantService) createLease(txCtx context.Context, lease *model.Lease) error {
	if _, err := s.units.FindByID(txCtx, lease.UnitID); err != nil {
		return validationIfMissing(err, "Unit not found")
	}
	if _, err := s.leases.FindActiveByUnit(txCtx, lease.UnitID); err == nil {
		return apperr.Conflict("Unit already has an active lease")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal(err, "failed to check unit lease")
	}

	if err := s.leases.Create(txCtx, lease); err != nil {
		return apperr.Internal(err, "failed to create lease")
	}
	for _, p := range paymentSchedule(lease) {
		p := p
		if err := s.payments.Create(txCtx, &p); err != nil {
			return apperr.Internal(err, "failed to create payment schedule")
		}
	}
	return nil
}

func buildLease(req LeaseRequest) (*model.Lease, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, apperr.Validation("end_date must be after start_date")
	}
	if req.MonthlyRent.IsNegative() || req.Deposit.IsNegative() {
		return nil, apperr.Validation("monthly_rent and deposit must not be negative")
	}
	due := req.PaymentDueDay
	if due == 0 {
		due = start.Day()
	}
	return &model.Lease{
		UnitID:        req.UnitID,
		StartDate:     start,
		EndDate:       end,
		MonthlyRent:   req.MonthlyRent,
		Deposit:       req.Deposit,
		PaymentDueDay: due,
		Status:        model.LeaseActive,
	}, nil
}

// paymentSchedule lists one pending payment per month of the lease, due on PaymentDueDay or the
// month's last day when the month is shorter.
func paymentSchedule(lease *model.Lease) []model.Payment {
	if !lease.MonthlyRent.IsPositive() {
		return nil
	}
	leaseID := lease.ID
	var out []model.Payment
	month := time.Date(lease.StartDate.Year(), lease.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxLeaseMonths; i++ {
		day := lease.PaymentDueDay
		if last := daysIn(month); day > last {
			day = last
		}
		due := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
		if due.After(lease.EndDate) {
			break
		}
		if !due.Before(lease.StartDate) {
			out = append(out, model.Payment{
				TenantID: lease.TenantID,
				LeaseID:  &leaseID,
				Amount:   lease.MonthlyRent,
				DueDate:  due,
				Status:   model.PaymentPending,
			})
		}
		month = month.AddDate(0, 1, 0)
	}
	return out
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
