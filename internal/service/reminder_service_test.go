package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/internal/mailer"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyMailer struct {
	sent   []mailer.Message
	failTo string
}

func (m *flakyMailer) Send(_ context.Context, msg mailer.Message) error {
	if msg.To == m.failTo {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestReminderRun(t *testing.T) {
	payments := &fakePayments{
		overdueCount: 2,
		due: []model.Payment{
			{ID: 1, Amount: decimal.NewFromInt(1500), DueDate: day("2026-03-03"), Tenant: &model.Tenant{Name: "Acme", Email: "ap@acme.test"}},
			{ID: 2, Amount: decimal.NewFromInt(800), DueDate: day("2026-03-04"), Tenant: &model.Tenant{Name: "NoMail"}},
			{ID: 3, Amount: decimal.NewFromInt(900), DueDate: day("2026-03-04"), Tenant: &model.Tenant{Name: "Bounce", Email: "bounce@x.test"}},
		},
	}
	mail := &flakyMailer{failTo: "bounce@x.test"}
	notify := &fakeNotifier{}
	sent := &fakeCounter{}
	audit := &fakeAudit{}

	svc := NewReminderService(&fakeTx{}, payments, audit, mail, notify, sent, 3, zap.NewNop()).(*reminderService)
	now := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res, err := svc.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, day("2026-03-02"), payments.overdueCut)
	assert.Equal(t, day("2026-03-02"), payments.dueFrom)
	assert.Equal(t, day("2026-03-05"), payments.dueTo)

	assert.Equal(t, int64(2), res.MarkedOverdue)
	assert.Equal(t, 3, res.Due)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []uint{1}, payments.reminded)
	assert.Equal(t, now, payments.markedAt)

	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].HTML, "1500.00")
	assert.Contains(t, mail.sent[0].Subject, "2026-03-03")

	assert.Equal(t, 1.0, sent.total)
	assert.Equal(t, []string{EventPaymentReminders}, notify.events)
	require.Len(t, audit.entries, 1)
	assert.Nil(t, audit.entries[0].UserID)
}

func TestReminderRunNothingDue(t *testing.T) {
	payments := &fakePayments{}
	notify := &fakeNotifier{}
	svc := NewReminderService(&fakeTx{}, payments, &fakeAudit{}, &flakyMailer{}, notify, nil, 3, zap.NewNop())

	res, err := svc.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Empty(t, res.PaymentIDs)
	assert.Empty(t, notify.events)
}
