// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// SMTP sends email through an SMTP relay using go-mail. It is the
// alternative provider for deployments without a Resend API key.
type SMTP struct {
	cfg  SMTPConfig
	from From
}

// NewSMTP creates an SMTP sender.
func NewSMTP(cfg SMTPConfig, from From) *SMTP {
	return &SMTP{cfg: cfg, from: from}
}

// Send delivers one message via SMTP.
func (s *SMTP) Send(ctx context.Context, to string, msg Message) Result {
	m := mail.NewMsg()

	if s.from.Name != "" {
		if err := m.FromFormat(s.from.Name, s.from.Email); err != nil {
			return Result{Err: fmt.Errorf("setting from address: %w", err)}
		}
	} else {
		if err := m.From(s.from.Email); err != nil {
			return Result{Err: fmt.Errorf("setting from address: %w", err)}
		}
	}

	if err := m.To(to); err != nil {
		return Result{Err: fmt.Errorf("setting to address: %w", err)}
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return Result{Err: fmt.Errorf("creating mail client: %w", err)}
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return Result{Err: fmt.Errorf("sending email: %w", err)}
	}

	return Result{Delivered: true}
}
