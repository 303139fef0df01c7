package service

import (
	"context"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/mailer"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"go.uber.org/zap"
)

// ReminderResult summarizes one reminder run
type ReminderResult struct {
	MarkedOverdue int64  `json:"marked_overdue"`
	Due           int    `json:"due"`
	Sent          int    `json:"sent"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	PaymentIDs    []uint `json:"payment_ids"`
}

type ReminderService interface {
	// Run flags pending payments past their due date as overdue, then emails tenants whose pending
	// payments fall due within the configured window and have not been reminded yet.
	Run(ctx context.Context, actorID uint) (*ReminderResult, error)
}

type reminderService struct {
	txManager repository.TransactionManager
	payments  repository.PaymentRepository
	mail      mailer.Mailer
	audit     auditor
	notify    Notifier
	sent      counter
	daysAhead int
	log       *zap.Logger
	now       func() time.Time
}

func NewReminderService(
	txManager repository.TransactionManager,
	payments repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	mail mailer.Mailer,
	notify Notifier,
	sent counter,
	daysAhead int,
	log *zap.Logger,
) ReminderService {
	if sent == nil {
		sent = nopCounter{}
	}
	if daysAhead < 0 {
		daysAhead = 0
	}
	return &reminderService{
		txManager: txManager,
		payments:  payments,
		mail:      mail,
		audit:     auditor{repo: auditRepo},
		notify:    notifierOrNop(notify),
		sent:      sent,
		daysAhead: daysAhead,
		log:       log,
		now:       time.Now,
	}
}

func (s *reminderService) Run(ctx context.Context, actorID uint) (*ReminderResult, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := today.AddDate(0, 0, s.daysAhead)

	overdue, err := s.payments.MarkOverdue(ctx, today)
	if err != nil {
		return nil, apperr.Internal(err, "failed to mark overdue payments")
	}

	due, err := s.payments.ListDueForReminder(ctx, today, until)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list due payments")
	}

	res := &ReminderResult{MarkedOverdue: overdue, Due: len(due), PaymentIDs: []uint{}}
	for _, p := range due {
		if p.Tenant == nil || p.Tenant.Email == "" {
			res.Skipped++
			continue
		}
		msg, err := mailer.PaymentReminder(p.Tenant.Email, mailer.PaymentReminderData{
			TenantName: p.Tenant.Name,
			Amount:     p.Amount.StringFixed(2),
			DueDate:    p.DueDate.Format(dateLayout),
			Reference:  p.Reference,
		})
		if err == nil {
			err = s.mail.Send(ctx, msg)
		}
		if err != nil {
			res.Failed++
			s.log.Warn("payment reminder failed", zap.Uint("payment_id", p.ID), zap.Error(err))
			continue
		}
		res.Sent++
		res.PaymentIDs = append(res.PaymentIDs, p.ID)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payments.MarkReminded(txCtx, res.PaymentIDs, now); err != nil {
			return apperr.Internal(err, "failed to mark payments reminded")
		}
		return s.audit.record(txCtx, actorID, model.ActionPaymentReminder, "payment", 0, res)
	})
	if err != nil {
		return nil, err
	}

	s.sent.Add(float64(res.Sent))
	if res.Sent > 0 || res.MarkedOverdue > 0 {
		s.notify.Publish(EventPaymentReminders, res)
	}
	s.log.Info("payment reminder run",
		zap.Int64("overdue", res.MarkedOverdue),
		zap.Int("due", res.Due),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed))
	return res, nil
}
