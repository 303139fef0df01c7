package repository

import (
	"context"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type PaymentFilter struct {
	TenantID *uint
	Status   *model.PaymentStatus
	DueFrom  *time.Time
	DueTo    *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Payment, error)
	List(ctx context.Context, f PaymentFilter, p pagination.Params) ([]model.Payment, int64, error)
	// ListAll is List without paging, for exports.
	ListAll(ctx context.Context, f PaymentFilter) ([]model.Payment, error)
	// ListDueForReminder returns pending payments due in [from, to] that have not been reminded yet.
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]model.Payment, error)
	MarkReminded(ctx context.Context, ids []uint, at time.Time) error
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
}

type paymentRepository struct {
	crud[model.Payment]
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{crud[model.Payment]{db: db}}
}

func (f PaymentFilter) scope(db *gorm.DB) *gorm.DB {
	if f.TenantID != nil {
		db = db.Where("tenant_id = ?", *f.TenantID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.DueFrom != nil {
		db = db.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		db = db.Where("due_date <= ?", *f.DueTo)
	}
	return db
}

func (r *paymentRepository) List(ctx context.Context, f PaymentFilter, p pagination.Params) ([]model.Payment, int64, error) {
	return paginate[model.Payment](GetDB(ctx, r.db), f.scope, "due_date desc, id desc", p, "Tenant")
}

func (r *paymentRepository) ListAll(ctx context.Context, f PaymentFilter) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).Scopes(f.scope).Preload("Tenant").Order("due_date asc, id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := GetDB(ctx, r.db).
		Preload("Tenant").
		Where("status = ? AND reminder_sent_at IS NULL AND due_date >= ? AND due_date <= ?", model.PaymentPending, from, to).
		Order("due_date asc, id asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) MarkReminded(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.Payment{}).Where("id IN ?", ids).Update("reminder_sent_at", at).Error
}

func (r *paymentRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Payment{}).
		Where("status = ? AND due_date < ?", model.PaymentPending, before).
		Update("status", model.PaymentOverdue)
	return res.RowsAffected, res.Error
}
