package service

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateAssetRequest struct {
	Code        string `json:"code" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=255"`
	Address     string `json:"address"`
	City        string `json:"city" binding:"max=100"`
	TotalFloors int    `json:"total_floors" binding:"min=0"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateAssetRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Address     *string `json:"address"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	TotalFloors *int    `json:"total_floors" binding:"omitempty,min=0"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

type CreateUnitRequest struct {
	AssetID  uint            `json:"asset_id" binding:"required"`
	Code     string          `json:"code" binding:"required,max=50"`
	Name     string          `json:"name"`
	Floor    int             `json:"floor"`
	AreaSqm  decimal.Decimal `json:"area_sqm"`
	BaseRent decimal.Decimal `json:"base_rent"`
}

type UpdateUnitRequest struct {
	Code     *string          `json:"code" binding:"omitempty,max=50"`
	Name     *string          `json:"name"`
	Floor    *int             `json:"floor"`
	AreaSqm  *decimal.Decimal `json:"area_sqm"`
	BaseRent *decimal.Decimal `json:"base_rent"`
}

type AssetService interface {
	List(ctx context.Context, f repository.AssetFilter, p pagination.Params) ([]model.Asset, int64, error)
	Get(ctx context.Context, id uint) (*model.Asset, error)
	Create(ctx context.Context, req CreateAssetRequest) (*model.Asset, error)
	Update(ctx context.Context, id uint, req UpdateAssetRequest) (*model.Asset, error)
	Delete(ctx context.Context, id uint) error
}

type UnitService interface {
	List(ctx context.Context, f repository.UnitFilter, p pagination.Params) ([]model.Unit, int64, error)
	Get(ctx context.Context, id uint) (*model.Unit, error)
	Create(ctx context.Context, req CreateUnitRequest) (*model.Unit, error)
	Update(ctx context.Context, id uint, req UpdateUnitRequest) (*model.Unit, error)
	Delete(ctx context.Context, id uint) error
}

type assetService struct {
	assets repository.AssetRepository
}

func NewAssetService(assets repository.AssetRepository) AssetService {
	return &assetService{assets: assets}
}

func (s *assetService) List(ctx context.Context, f repository.AssetFilter, p pagination.Params) ([]model.Asset, int64, error) {
	items, total, err := s.assets.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list assets")
	}
	return items, total, nil
}

func (s *assetService) Get(ctx context.Context, id uint) (*model.Asset, error) {
	a, err := s.assets.FindByIDWithUnits(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Asset not found")
	}
	return a, nil
}

func (s *assetService) Create(ctx context.Context, req CreateAssetRequest) (*model.Asset, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if _, err := s.assets.FindByCode(ctx, code); err == nil {
		return nil, apperr.Conflict("Asset code %s already exists", code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err, "failed to check asset code")
	}

	active := true
	setIf(&active, req.IsActive)
	a := model.Asset{
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Address:     req.Address,
		City:        req.City,
		TotalFloors: req.TotalFloors,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    active,
	}
	if err := s.assets.Create(ctx, &a); err != nil {
		return nil, apperr.Internal(err, "failed to create asset")
	}
	return &a, nil
}

func (s *assetService) Update(ctx context.Context, id uint, req UpdateAssetRequest) (*model.Asset, error) {
	a, err := s.assets.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Asset not found")
	}
	setIf(&a.Name, req.Name)
	setIf(&a.Address, req.Address)
	setIf(&a.City, req.City)
	setIf(&a.TotalFloors, req.TotalFloors)
	setIf(&a.Description, req.Description)
	setIf(&a.ImageURL, req.ImageURL)
	setIf(&a.IsActive, req.IsActive)
	if err := s.assets.Update(ctx, a); err != nil {
		return nil, apperr.Internal(err, "failed to update asset")
	}
	return a, nil
}

func (s *assetService) Delete(ctx context.Context, id uint) error {
	if err := s.assets.Delete(ctx, id); err != nil {
		return apperr.FromRepo(err, "Asset not found")
	}
	return nil
}

type unitService struct {
	units  repository.UnitRepository
	assets repository.AssetRepository
}

func NewUnitService(units repository.UnitRepository, assets repository.AssetRepository) UnitService {
	return &unitService{units: units, assets: assets}
}

func (s *unitService) List(ctx context.Context, f repository.UnitFilter, p pagination.Params) ([]model.Unit, int64, error) {
	items, total, err := s.units.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list units")
	}
	return items, total, nil
}

func (s *unitService) Get(ctx context.Context, id uint) (*model.Unit, error) {
	u, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Unit not found")
	}
	return u, nil
}

func (s *unitService) Create(ctx context.Context, req CreateUnitRequest) (*model.Unit, error) {
	if _, err := s.assets.FindByID(ctx, req.AssetID); err != nil {
		return nil, validationIfMissing(err, "Asset not found")
	}
	if req.AreaSqm.IsNegative() || req.BaseRent.IsNegative() {
		return nil, apperr.Validation("area_sqm and base_rent must not be negative")
	}
	u := model.Unit{
		AssetID:  req.AssetID,
		Code:     strings.TrimSpace(req.Code),
		Name:     req.Name,
		Floor:    req.Floor,
		AreaSqm:  req.AreaSqm,
		BaseRent: req.BaseRent,
	}
	if err := s.units.Create(ctx, &u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Unit code %s already exists in this asset", u.Code)
		}
		return nil, apperr.Internal(err, "failed to create unit")
	}
	return &u, nil
}

func (s *unitService) Update(ctx context.Context, id uint, req UpdateUnitRequest) (*model.Unit, error) {
	u, err := s.units.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Unit not found")
	}
	setIf(&u.Code, req.Code)
	setIf(&u.Name, req.Name)
	setIf(&u.Floor, req.Floor)
	setIf(&u.AreaSqm, req.AreaSqm)
	setIf(&u.BaseRent, req.BaseRent)
	if u.AreaSqm.IsNegative() || u.BaseRent.IsNegative() {
		return nil, apperr.Validation("area_sqm and base_rent must not be negative")
	}
	if err := s.units.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Unit code %s already exists in this asset", u.Code)
		}
		return nil, apperr.Internal(err, "failed to update unit")
	}
	return u, nil
}

func (s *unitService) Delete(ctx context.Context, id uint) error {
	if err := s.units.Delete(ctx, id); err != nil {
		return apperr.FromRepo(err, "Unit not found")
	}
	return nil
}
