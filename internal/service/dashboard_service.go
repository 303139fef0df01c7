package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type DashboardSummary struct {
	From        string                  `json:"from"`
	To          string                  `json:"to"`
	Counts      repository.EntityCounts `json:"counts"`
	Payments    []repository.PaymentSum `json:"payments"`
	Collected   decimal.Decimal         `json:"collected"`
	Outstanding decimal.Decimal         `json:"outstanding"`
}

type DashboardService interface {
	// Summary defaults to the current calendar month when from/to are empty.
	Summary(ctx context.Context, from, to string) (*DashboardSummary, error)
	// ExportPayments renders payments due in [from, to] as an XLSX workbook.
	ExportPayments(ctx context.Context, from, to string) ([]byte, error)
}

type dashboardService struct {
	dashboard repository.DashboardRepository
	payments  repository.PaymentRepository
	now       func() time.Time
}

func NewDashboardService(dashboard repository.DashboardRepository, payments repository.PaymentRepository) DashboardService {
	return &dashboardService{dashboard: dashboard, payments: payments, now: time.Now}
}

func (s *dashboardService) Summary(ctx context.Context, from, to string) (*DashboardSummary, error) {
	start, end, err := s.period(from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.dashboard.Counts(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load dashboard counts")
	}
	sums, err := s.dashboard.PaymentSums(ctx, start, end)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load payment totals")
	}

	out := &DashboardSummary{
		From:        start.Format(dateLayout),
		To:          end.Format(dateLayout),
		Counts:      *counts,
		Payments:    sums,
		Collected:   decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, ps := range sums {
		switch ps.Status {
		case model.PaymentPaid:
			out.Collected = out.Collected.Add(ps.Total)
		case model.PaymentPending, model.PaymentOverdue:
			out.Outstanding = out.Outstanding.Add(ps.Total)
		}
	}
	return out, nil
}

var paymentExportHeader = []string{"ID", "Tenant", "Due Date", "Amount", "Status", "Paid At", "Reference", "Notes"}

func (s *dashboardService) ExportPayments(ctx context.Context, from, to string) ([]byte, error) {
	start, end, err := s.period(from, to)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListAll(ctx, repository.PaymentFilter{DueFrom: &start, DueTo: &end})
	if err != nil {
		return nil, apperr.Internal(err, "failed to load payments")
	}
	data, err := paymentsWorkbook(payments)
	if err != nil {
		return nil, apperr.Internal(err, "failed to render payments workbook")
	}
	return data, nil
}

func paymentsWorkbook(payments []model.Payment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &paymentExportHeader); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(paymentExportHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for i, p := range payments {
		tenant := ""
		if p.Tenant != nil {
			tenant = p.Tenant.Name
		}
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.Format("2006-01-02 15:04")
		}
		amount, _ := p.Amount.Float64()
		row := []interface{}{p.ID, tenant, p.DueDate.Format(dateLayout), amount, p.Status.String(), paidAt, p.Reference, p.Notes}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "H", 16); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *dashboardService) period(from, to string) (time.Time, time.Time, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	var err error
	if from != "" {
		if start, err = parseDate("from", from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = parseDate("to", to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.Validation("to must not be before from")
	}
	return start, end, nil
}
