package repository

import (
	"context"

	"backoffice/internal/model"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type AuditFilter struct {
	EntityType string
	UserID     *uint
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, f AuditFilter, p pagination.Params) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, f AuditFilter, p pagination.Params) ([]model.AuditLog, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.EntityType != "" {
			db = db.Where("entity_type = ?", f.EntityType)
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		return db
	}
	return paginate[model.AuditLog](GetDB(ctx, r.db), scope, "created_at desc, id desc", p, "User")
}
