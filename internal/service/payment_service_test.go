package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentFixture(payments ...model.Payment) (*paymentService, *fakePayments, *fakeAudit) {
	store := newFakePayments(payments...)
	audit := &fakeAudit{}
	tenants := &fakeTenants{byID: map[uint]*model.Tenant{4: {ID: 4, Name: "Acme"}}}
	svc := NewPaymentService(&fakeTx{}, store, tenants, audit).(*paymentService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC) }
	return svc, store, audit
}

func TestPaymentUpdateStatus(t *testing.T) {
	svc, store, audit := newPaymentFixture(
		model.Payment{ID: 1, TenantID: 4, Status: model.PaymentPending},
		model.Payment{ID: 2, TenantID: 4, Status: model.PaymentOverdue},
	)
	ctx := context.Background()

	p, err := svc.UpdateStatus(ctx, 9, 1, UpdatePaymentStatusRequest{Status: "overdue"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentOverdue, p.Status)
	assert.Nil(t, p.PaidAt)

	p, err = svc.UpdateStatus(ctx, 9, 2, UpdatePaymentStatusRequest{Status: "paid", Reference: "TRX-77"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, p.Status)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, svc.now(), *p.PaidAt)
	assert.Equal(t, "TRX-77", store.byID[2].Reference)

	assert.Equal(t, []string{model.ActionUpdatePaymentStatus, model.ActionUpdatePaymentStatus}, audit.actions())
}

func TestPaymentSettledStatusesAreTerminal(t *testing.T) {
	svc, store, audit := newPaymentFixture(
		model.Payment{ID: 1, TenantID: 4, Status: model.PaymentPaid},
		model.Payment{ID: 2, TenantID: 4, Status: model.PaymentCancelled},
	)
	ctx := context.Background()

	for _, id := range []uint{1, 2} {
		for _, next := range []string{"pending", "overdue", "paid", "cancelled"} {
			_, err := svc.UpdateStatus(ctx, 9, id, UpdatePaymentStatusRequest{Status: next})
			assert.True(t, apperr.Is(err, apperr.KindConflict), "payment %d -> %s", id, next)
		}
	}
	assert.Empty(t, store.updated)
	assert.Empty(t, audit.entries)
}

func TestPaymentUpdateStatusRejectsBadInput(t *testing.T) {
	svc, _, _ := newPaymentFixture(model.Payment{ID: 1, TenantID: 4, Status: model.PaymentPending})
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 9, 1, UpdatePaymentStatusRequest{Status: "refunded"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UpdateStatus(ctx, 9, 404, UpdatePaymentStatusRequest{Status: "paid"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPaymentCreate(t *testing.T) {
	svc, store, audit := newPaymentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, 9, CreatePaymentRequest{TenantID: 4, Amount: decimal.Zero, DueDate: "2026-04-01"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, 9, CreatePaymentRequest{TenantID: 4, Amount: decimal.NewFromInt(100), DueDate: "01/04/2026"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, 9, CreatePaymentRequest{TenantID: 5, Amount: decimal.NewFromInt(100), DueDate: "2026-04-01"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	p, err := svc.Create(ctx, 9, CreatePaymentRequest{TenantID: 4, Amount: decimal.NewFromInt(1200), DueDate: "2026-04-01"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), p.DueDate)
	assert.Len(t, store.byID, 1)
	assert.Equal(t, []string{model.ActionCreatePayment}, audit.actions())
}
