package mailer

import (
	"fmt"

	"maestro/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer sends transactional email. Sends are best-effort; callers log
// failures and move on.
type Mailer interface {
	Send(toName, toEmail, subject, plain, html string) error
}

type SendGridMailer struct {
	client *sendgrid.Client
	cfg    *config.MailConfig
	log    *zap.Logger
}

func NewSendGridMailer(cfg *config.MailConfig, log *zap.Logger) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(cfg.SendGridKey), cfg: cfg, log: log}
}

func (m *SendGridMailer) Send(toName, toEmail, subject, plain, html string) error {
	from := mail.NewEmail(m.cfg.FromName, m.cfg.FromAddress)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.log.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// NoopMailer drops email. Used in tests and when no API key is set.
type NoopMailer struct {
	Sent []string
}

func (m *NoopMailer) Send(_, toEmail, subject, _, _ string) error {
	m.Sent = append(m.Sent, toEmail+": "+subject)
	return nil
}
