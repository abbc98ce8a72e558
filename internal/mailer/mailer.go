// Package mailer sends the contact notification and admin reply emails.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("email is not configured")

type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP delivers mail through the configured relay using STARTTLS when the
// server offers it.
type SMTP struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

func NewSMTP(cfg config.SMTPConfig, log zerolog.Logger) *SMTP {
	return &SMTP{cfg: cfg, log: log}
}

func (s *SMTP) Configured() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	start := time.Now()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Dur("duration", time.Since(start)).
		Msg("email sent")
	return nil
}

func (s *SMTP) clientOptions() []mail.Option {
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(15 * time.Second),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}
