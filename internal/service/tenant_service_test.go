package service

import (
	"testing"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestPaymentScheduleCapsDueDayToMonthLength(t *testing.T) {
	lease := &model.Lease{
		ID:            3,
		TenantID:      8,
		StartDate:     day("2026-01-31"),
		EndDate:       day("2026-04-30"),
		MonthlyRent:   decimal.NewFromInt(1200),
		PaymentDueDay: 31,
	}

	got := paymentSchedule(lease)
	require.Len(t, got, 4)
	assert.Equal(t, day("2026-01-31"), got[0].DueDate)
	assert.Equal(t, day("2026-02-28"), got[1].DueDate)
	assert.Equal(t, day("2026-03-31"), got[2].DueDate)
	assert.Equal(t, day("2026-04-30"), got[3].DueDate)
	for _, p := range got {
		assert.Equal(t, uint(8), p.TenantID)
		require.NotNil(t, p.LeaseID)
		assert.Equal(t, uint(3), *p.LeaseID)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(1200)))
		assert.Equal(t, model.PaymentPending, p.Status)
	}
}

func TestPaymentScheduleSkipsDueDaysBeforeStart(t *testing.T) {
	lease := &model.Lease{
		StartDate:     day("2026-01-15"),
		EndDate:       day("2026-03-14"),
		MonthlyRent:   decimal.NewFromInt(500),
		PaymentDueDay: 5,
	}

	got := paymentSchedule(lease)
	require.Len(t, got, 2)
	assert.Equal(t, day("2026-02-05"), got[0].DueDate)
	assert.Equal(t, day("2026-03-05"), got[1].DueDate)
}

func TestPaymentScheduleZeroRent(t *testing.T) {
	lease := &model.Lease{StartDate: day("2026-01-01"), EndDate: day("2026-12-31"), PaymentDueDay: 1}
	assert.Empty(t, paymentSchedule(lease))
}

func TestBuildLease(t *testing.T) {
	l, err := buildLease(LeaseRequest{UnitID: 1, StartDate: "2026-02-10", EndDate: "2027-02-09", MonthlyRent: decimal.NewFromInt(900)})
	require.NoError(t, err)
	assert.Equal(t, 10, l.PaymentDueDay)
	assert.Equal(t, model.LeaseActive, l.Status)

	_, err = buildLease(LeaseRequest{UnitID: 1, StartDate: "2026-02-10", EndDate: "2026-02-10"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = buildLease(LeaseRequest{UnitID: 1, StartDate: "2026-02-10", EndDate: "2026-05-10", MonthlyRent: decimal.NewFromInt(-1)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
