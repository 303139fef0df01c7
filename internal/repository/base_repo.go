package repository

import (
	"context"
	"strings"

	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

// crud is embedded by entity repositories that only need id-keyed access.
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) Create(ctx context.Context, v *T) error {
	return GetDB(ctx, r.db).Create(v).Error
}

func (r crud[T]) Update(ctx context.Context, v *T) error {
	return GetDB(ctx, r.db).Save(v).Error
}

// Delete returns gorm.ErrRecordNotFound when no row matched.
func (r crud[T]) Delete(ctx context.Context, id uint) error {
	var zero T
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r crud[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var v T
	if err := GetDB(ctx, r.db).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// paginate counts and fetches one page of T, applying scope to both queries.
func paginate[T any](db *gorm.DB, scope func(*gorm.DB) *gorm.DB, order string, p pagination.Params, preloads ...string) ([]T, int64, error) {
	var (
		items []T
		total int64
		zero  T
	)
	if err := db.Model(&zero).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Model(&zero).Scopes(scope)
	for _, name := range preloads {
		q = q.Preload(name)
	}
	if err := q.Order(order).Offset(p.Offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// likeAny matches search case-insensitively against any of columns, portable across postgres and mysql.
func likeAny(db *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return db
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, c := range columns {
		clauses = append(clauses, "LOWER("+c+") LIKE ?")
		args = append(args, pattern)
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}
