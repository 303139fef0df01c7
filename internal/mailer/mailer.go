// Package mailer renders the back office's HTML emails and sends them over SMTP.
package mailer

import (
	"bytes"
	"context"
	"html/template"

	"backoffice/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns an SMTP mailer, or a mailer that only logs when SMTP is not configured.
func New(cfg config.SMTPConfig, log *zap.Logger) Mailer {
	if !cfg.Enabled() {
		return &logMailer{log: log.Named("mailer")}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)
	return m.dialer.DialAndSend(gm)
}

type logMailer struct {
	log *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("smtp disabled, email not sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

var (
	resetTmpl = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>A password reset was requested for your back office account.</p>
<p><a href="{{.Link}}">Reset your password</a>. The link expires in {{.ExpiresIn}}.</p>
<p>If you did not request this, ignore this email.</p>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(`<p>Dear {{.TenantName}},</p>
<p>This is a reminder that a rent payment of <strong>{{.Amount}}</strong> is due on <strong>{{.DueDate}}</strong>.</p>
{{if .Reference}}<p>Reference: {{.Reference}}</p>{{end}}
<p>Thank you.</p>`))
)

type PasswordResetData struct {
	Name      string
	Link      string
	ExpiresIn string
}

type PaymentReminderData struct {
	TenantName string
	Amount     string
	DueDate    string
	Reference  string
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PasswordReset builds the reset-link email
func PasswordReset(to string, data PasswordResetData) (Message, error) {
	body, err := render(resetTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your password", HTML: body}, nil
}

// PaymentReminder builds the due-soon email sent to tenants
func PaymentReminder(to string, data PaymentReminderData) (Message, error) {
	body, err := render(reminderTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Rent payment due on " + data.DueDate, HTML: body}, nil
}
