package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(ctx context.Context, menu *model.Menu) error
	Update(ctx context.Context, menu *model.Menu) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Menu, error)
	FindByURL(ctx context.Context, url string) (*model.Menu, error)
	// ListAll returns every menu, active or not, in one flat query.
	ListAll(ctx context.Context) ([]model.Menu, error)
	CountChildren(ctx context.Context, id uint) (int64, error)
}

type menuRepository struct {
	crud[model.Menu]
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{crud[model.Menu]{db: db}}
}

func (r *menuRepository) FindByURL(ctx context.Context, url string) (*model.Menu, error) {
	var menu model.Menu
	if err := GetDB(ctx, r.db).Where("url = ? AND is_active = ?", url, true).Order("id asc").First(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) ListAll(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	if err := GetDB(ctx, r.db).Order("sort_order asc, id asc").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *menuRepository) CountChildren(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Menu{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}
