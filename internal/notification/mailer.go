package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
	log     *slog.Logger
}

// NewSMTPMailer logs messages instead of sending them when mail is disabled.
func NewSMTPMailer(cfg internal.MailConfig, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		enabled: cfg.Enabled,
		log:     log,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	if !m.enabled {
		logger.FromOr(ctx, m.log).Info("mail disabled, skipping send", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}
	logger.FromOr(ctx, m.log).Debug("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
