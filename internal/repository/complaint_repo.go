package repository

import (
	"context"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type ComplaintFilter struct {
	Search   string
	Status   *model.ComplaintReportStatus
	TenantID *uint
	AssetID  *uint
}

type ComplaintReportRepository interface {
	Create(ctx context.Context, report *model.ComplaintReport) error
	Update(ctx context.Context, report *model.ComplaintReport) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.ComplaintReport, error)
	List(ctx context.Context, f ComplaintFilter, p pagination.Params) ([]model.ComplaintReport, int64, error)
}

type complaintReportRepository struct {
	crud[model.ComplaintReport]
}

func NewComplaintReportRepository(db *gorm.DB) ComplaintReportRepository {
	return &complaintReportRepository{crud[model.ComplaintReport]{db: db}}
}

func (r *complaintReportRepository) List(ctx context.Context, f ComplaintFilter, p pagination.Params) ([]model.ComplaintReport, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = likeAny(db, f.Search, "title", "description")
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		if f.TenantID != nil {
			db = db.Where("tenant_id = ?", *f.TenantID)
		}
		if f.AssetID != nil {
			db = db.Where("asset_id = ?", *f.AssetID)
		}
		return db
	}
	return paginate[model.ComplaintReport](GetDB(ctx, r.db), scope, "created_at desc, id desc", p)
}
