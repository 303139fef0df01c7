package mailer

import (
	"context"
	"testing"

	"backoffice/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPasswordResetEscapesInput(t *testing.T) {
	msg, err := PasswordReset("a@b.c", PasswordResetData{Name: "<b>Ann</b>", Link: "https://app/reset?token=x", ExpiresIn: "30m0s"})
	require.NoError(t, err)

	assert.Equal(t, "a@b.c", msg.To)
	assert.Contains(t, msg.HTML, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.Contains(t, msg.HTML, `href="https://app/reset?token=x"`)
}

func TestPaymentReminderSubject(t *testing.T) {
	msg, err := PaymentReminder("t@b.c", PaymentReminderData{TenantName: "Acme", Amount: "1200.00", DueDate: "2026-03-05"})
	require.NoError(t, err)

	assert.Equal(t, "Rent payment due on 2026-03-05", msg.Subject)
	assert.Contains(t, msg.HTML, "1200.00")
	assert.NotContains(t, msg.HTML, "Reference")
}

func TestNewWithoutHostLogsOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(config.SMTPConfig{}, zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: "x@y.z", Subject: "hi"}))
	assert.Equal(t, 1, logs.Len())
}
