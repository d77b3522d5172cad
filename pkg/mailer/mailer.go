package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/attendify/attendify-api/pkg/config"
)

// Message is a plain-text email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer delivers messages to students and instructors.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the delivery backend from configuration: SendGrid when enabled,
// a log-only mailer otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Enabled && cfg.SendgridKey != "" {
		return &sendgridMailer{
			client: sendgrid.NewSendClient(cfg.SendgridKey),
			from:   sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
			logger: logger,
		}
	}
	return &consoleMailer{logger: logger}
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *zap.Logger
}

func (m *sendgridMailer) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	mail := sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.Body, "")
	resp, err := m.client.SendWithContext(ctx, mail)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.logger.Debug("mail sent", zap.String("to", msg.ToEmail), zap.String("subject", msg.Subject))
	return nil
}

// consoleMailer logs messages instead of delivering them. Used in development
// and whenever mail is disabled.
type consoleMailer struct {
	logger *zap.Logger
}

func (m *consoleMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail (console)",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
