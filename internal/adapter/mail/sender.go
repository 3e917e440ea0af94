package mail

import (
	"context"
	"fmt"

	"github.com/craigsandeman1/fitmom-payments/config"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// SMTPSender implements ports.NotificationSender over SMTP using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// NewSMTPSender creates a new SMTPSender from the mail configuration.
func NewSMTPSender(cfg config.MailConfig, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

// Send delivers a single HTML email. The context cancels the send before
// dialing; gomail itself does not take a context.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Debug().
		Strs("to", to).
		Str("subject", subject).
		Msg("email delivered")

	return nil
}
