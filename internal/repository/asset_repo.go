package repository

import (
	"context"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type AssetFilter struct {
	Search string
	City   string
	Active *bool
}

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	Update(ctx context.Context, asset *model.Asset) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Asset, error)
	FindByIDWithUnits(ctx context.Context, id uint) (*model.Asset, error)
	FindByCode(ctx context.Context, code string) (*model.Asset, error)
	List(ctx context.Context, f AssetFilter, p pagination.Params) ([]model.Asset, int64, error)
}

type assetRepository struct {
	crud[model.Asset]
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{crud[model.Asset]{db: db}}
}

func (r *assetRepository) FindByIDWithUnits(ctx context.Context, id uint) (*model.Asset, error) {
	var asset model.Asset
	err := GetDB(ctx, r.db).
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("floor asc, code asc") }).
		First(&asset, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindByCode(ctx context.Context, code string) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).First(&asset, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, f AssetFilter, p pagination.Params) ([]model.Asset, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = likeAny(db, f.Search, "code", "name", "address")
		if f.City != "" {
			db = db.Where("city = ?", f.City)
		}
		if f.Active != nil {
			db = db.Where("is_active = ?", *f.Active)
		}
		return db
	}
	return paginate[model.Asset](GetDB(ctx, r.db), scope, "name asc, id asc", p)
}

type UnitFilter struct {
	AssetID *uint
	Search  string
	// Vacant restricts to units without an active lease.
	Vacant bool
}

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	Update(ctx context.Context, unit *model.Unit) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Unit, error)
	List(ctx context.Context, f UnitFilter, p pagination.Params) ([]model.Unit, int64, error)
}

type unitRepository struct {
	crud[model.Unit]
}

func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{crud[model.Unit]{db: db}}
}

func (r *unitRepository) List(ctx context.Context, f UnitFilter, p pagination.Params) ([]model.Unit, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = likeAny(db, f.Search, "units.code", "units.name")
		if f.AssetID != nil {
			db = db.Where("units.asset_id = ?", *f.AssetID)
		}
		if f.Vacant {
			db = db.Where("NOT EXISTS (SELECT 1 FROM leases WHERE leases.unit_id = units.id AND leases.status = ?)", model.LeaseActive)
		}
		return db
	}
	return paginate[model.Unit](GetDB(ctx, r.db), scope, "units.asset_id asc, units.floor asc, units.code asc", p, "Asset")
}
