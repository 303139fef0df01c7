package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntityCounts is the headline row of the dashboard
type EntityCounts struct {
	Assets          int64 `json:"assets"`
	Units           int64 `json:"units"`
	OccupiedUnits   int64 `json:"occupied_units"`
	Tenants         int64 `json:"tenants"`
	ActiveLeases    int64 `json:"active_leases"`
	OpenComplaints  int64 `json:"open_complaints"`
	PendingPayments int64 `json:"pending_payments"`
}

// PaymentSum totals payments of one status
type PaymentSum struct {
	Status model.PaymentStatus `json:"status"`
	Count  int64               `json:"count"`
	Total  decimal.Decimal     `json:"total"`
}

type DashboardRepository interface {
	Counts(ctx context.Context) (*EntityCounts, error)
	PaymentSums(ctx context.Context, from, to time.Time) ([]PaymentSum, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Counts(ctx context.Context) (*EntityCounts, error) {
	db := GetDB(ctx, r.db)
	var c EntityCounts
	steps := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&c.Assets, db.Model(&model.Asset{})},
		{&c.Units, db.Model(&model.Unit{})},
		{&c.OccupiedUnits, db.Model(&model.Lease{}).Where("status = ?", model.LeaseActive).Distinct("unit_id")},
		{&c.Tenants, db.Model(&model.Tenant{})},
		{&c.ActiveLeases, db.Model(&model.Lease{}).Where("status = ?", model.LeaseActive)},
		{&c.OpenComplaints, db.Model(&model.ComplaintReport{}).Where("status IN ?", []model.ComplaintReportStatus{model.ComplaintOpen, model.ComplaintInProgress})},
		{&c.PendingPayments, db.Model(&model.Payment{}).Where("status IN ?", []model.PaymentStatus{model.PaymentPending, model.PaymentOverdue})},
	}
	for _, s := range steps {
		if err := s.query.Count(s.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard entities: %w", err)
		}
	}
	return &c, nil
}

func (r *dashboardRepository) PaymentSums(ctx context.Context, from, to time.Time) ([]PaymentSum, error) {
	var sums []PaymentSum
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("due_date >= ? AND due_date <= ?", from, to).
		Group("status").
		Order("status asc").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query payment sums: %w", err)
	}
	return sums, nil
}
