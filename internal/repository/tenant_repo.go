package repository

import (
	"context"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	Update(ctx context.Context, tenant *model.Tenant) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Tenant, error)
	FindByIDWithLeases(ctx context.Context, id uint) (*model.Tenant, error)
	List(ctx context.Context, search string, p pagination.Params) ([]model.Tenant, int64, error)
}

type tenantRepository struct {
	crud[model.Tenant]
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{crud[model.Tenant]{db: db}}
}

func (r *tenantRepository) FindByIDWithLeases(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := GetDB(ctx, r.db).
		Preload("Leases", func(db *gorm.DB) *gorm.DB { return db.Order("start_date desc") }).
		Preload("Leases.Unit").
		First(&tenant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context, search string, p pagination.Params) ([]model.Tenant, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return likeAny(db, search, "name", "company_name", "email", "phone")
	}
	return paginate[model.Tenant](GetDB(ctx, r.db), scope, "created_at desc, id desc", p)
}

type LeaseRepository interface {
	Create(ctx context.Context, lease *model.Lease) error
	Update(ctx context.Context, lease *model.Lease) error
	FindByID(ctx context.Context, id uint) (*model.Lease, error)
	FindActiveByUnit(ctx context.Context, unitID uint) (*model.Lease, error)
	ListByTenant(ctx context.Context, tenantID uint) ([]model.Lease, error)
}

type leaseRepository struct {
	crud[model.Lease]
}

func NewLeaseRepository(db *gorm.DB) LeaseRepository {
	return &leaseRepository{crud[model.Lease]{db: db}}
}

func (r *leaseRepository) FindActiveByUnit(ctx context.Context, unitID uint) (*model.Lease, error) {
	var lease model.Lease
	if err := GetDB(ctx, r.db).Where("unit_id = ? AND status = ?", unitID, model.LeaseActive).First(&lease).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) ListByTenant(ctx context.Context, tenantID uint) ([]model.Lease, error) {
	var leases []model.Lease
	if err := GetDB(ctx, r.db).Preload("Unit").Where("tenant_id = ?", tenantID).Order("start_date desc").Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}
