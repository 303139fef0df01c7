package repository

import (
	"context"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type ScanInfoFilter struct {
	UserID *uint
	From   *time.Time
	To     *time.Time
}

type ScanInfoRepository interface {
	Create(ctx context.Context, scan *model.ScanInfo) error
	FindByID(ctx context.Context, id uint) (*model.ScanInfo, error)
	List(ctx context.Context, f ScanInfoFilter, p pagination.Params) ([]model.ScanInfo, int64, error)
}

type scanInfoRepository struct {
	crud[model.ScanInfo]
}

func NewScanInfoRepository(db *gorm.DB) ScanInfoRepository {
	return &scanInfoRepository{crud[model.ScanInfo]{db: db}}
}

func (r *scanInfoRepository) List(ctx context.Context, f ScanInfoFilter, p pagination.Params) ([]model.ScanInfo, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.From != nil {
			db = db.Where("scanned_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("scanned_at <= ?", *f.To)
		}
		return db
	}
	return paginate[model.ScanInfo](GetDB(ctx, r.db), scope, "scanned_at desc, id desc", p, "User")
}
