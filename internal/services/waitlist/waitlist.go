// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package waitlist implements the subscriber lifecycle: signup, double
// opt-in confirmation, unsubscription and list-wide broadcasts. State
// transitions are idempotent; the flags on a subscriber only ever move
// from false to true.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"codeberg.org/oliverandrich/waitlist/internal/dispatch"
	"codeberg.org/oliverandrich/waitlist/internal/mailer"
	"codeberg.org/oliverandrich/waitlist/internal/token"
	"github.com/google/uuid"
)

const (
	// ConfirmTokenTTL is the lifetime of a confirmation link.
	ConfirmTokenTTL = 3 * 24 * time.Hour
	// UnsubscribeTokenTTL is the lifetime of an unsubscribe link.
	UnsubscribeTokenTTL = 30 * 24 * time.Hour

	// maxBroadcastLimit caps how many recipients one broadcast may target.
	maxBroadcastLimit = 5000

	defaultSource = "website"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrInvalidEmail is returned when a signup address fails validation.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrMissingContent is returned when a broadcast has neither a usable
// template nor explicit subject and body.
var ErrMissingContent = errors.New("missing subject/html and unknown template")

// Store is the persistence contract the lifecycle needs.
type Store interface {
	CreateSubscriber(ctx context.Context, email, source string, confirmed bool) (bool, error)
	MarkConfirmed(ctx context.Context, email string) error
	MarkUnsubscribed(ctx context.Context, email string) error
	CountSubscribers(ctx context.Context) (int64, error)
	ListRecipients(ctx context.Context, confirmedOnly bool, limit int) ([]string, error)
}

// Config holds the lifecycle settings.
type Config struct {
	DoubleOptIn bool
	SendWelcome bool
	BaseURL     string
	AppName     string
}

// Service drives subscriber state transitions and the notifications they
// trigger.
type Service struct {
	store  Store
	codec  *token.Codec
	sender mailer.Sender
	bg     *dispatch.Background
	cfg    Config
}

// NewService creates a lifecycle service. A nil sender disables all
// outgoing email.
func NewService(store Store, codec *token.Codec, sender mailer.Sender, bg *dispatch.Background, cfg Config) *Service {
	return &Service{
		store:  store,
		codec:  codec,
		sender: sender,
		bg:     bg,
		cfg:    cfg,
	}
}

// NormalizeEmail lowercases and trims an address. All storage and token
// comparisons use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupResult reports the outcome of a signup request.
type SignupResult struct {
	Email          string
	AlreadyPresent bool
	Confirmed      bool
	Position       int64
}

// Signup registers an email address. A duplicate signup leaves the
// existing record untouched and reports AlreadyPresent. New subscribers
// get a confirmation email (double opt-in) or a welcome email, sent
// detached so the caller is never blocked on the provider.
func (s *Service) Signup(ctx context.Context, email, source string) (*SignupResult, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if source == "" {
		source = defaultSource
	}

	confirmed := !s.cfg.DoubleOptIn
	inserted, err := s.store.CreateSubscriber(ctx, email, source, confirmed)
	if err != nil {
		return nil, fmt.Errorf("creating subscriber: %w", err)
	}
	if !inserted {
		return &SignupResult{Email: email, AlreadyPresent: true}, nil
	}

	if s.sender != nil {
		if s.cfg.DoubleOptIn {
			s.sendConfirmEmail(email)
		} else if s.cfg.SendWelcome {
			s.sendWelcomeEmail(email)
		}
	}

	count, err := s.store.CountSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting subscribers: %w", err)
	}

	return &SignupResult{Email: email, Confirmed: confirmed, Position: count}, nil
}

// Confirm verifies a confirmation token and marks the subscriber
// confirmed. Verification happens before any storage mutation; an invalid
// or expired token is reported as token.ErrInvalidToken, distinct from
// storage failures. Confirming twice is not an error.
func (s *Service) Confirm(ctx context.Context, tok string) (string, error) {
	identity, err := s.codec.Verify(tok)
	if err != nil {
		return "", err
	}
	email := NormalizeEmail(identity)

	if err := s.store.MarkConfirmed(ctx, email); err != nil {
		return "", fmt.Errorf("marking confirmed: %w", err)
	}

	if s.sender != nil && s.cfg.SendWelcome {
		s.sendWelcomeEmail(email)
	}

	return email, nil
}

// Unsubscribe verifies an unsubscribe token and marks the subscriber
// unsubscribed. No notification is sent.
func (s *Service) Unsubscribe(ctx context.Context, tok string) (string, error) {
	identity, err := s.codec.Verify(tok)
	if err != nil {
		return "", err
	}
	email := NormalizeEmail(identity)

	if err := s.store.MarkUnsubscribed(ctx, email); err != nil {
		return "", fmt.Errorf("marking unsubscribed: %w", err)
	}

	return email, nil
}

func (s *Service) sendConfirmEmail(email string) {
	msg, err := mailer.BuildConfirm(mailer.TemplateOptions{
		AppName:        s.cfg.AppName,
		BaseURL:        s.cfg.BaseURL,
		ConfirmURL:     s.actionURL("/confirm", email, ConfirmTokenTTL),
		UnsubscribeURL: s.actionURL("/unsubscribe", email, UnsubscribeTokenTTL),
		UserEmail:      email,
	})
	if err != nil {
		slog.Error("rendering confirmation email", "error", err, "email", email)
		return
	}
	s.sendDetached(email, msg, "confirmation")
}

func (s *Service) sendWelcomeEmail(email string) {
	msg, err := mailer.BuildWelcome(mailer.TemplateOptions{
		AppName:        s.cfg.AppName,
		BaseURL:        s.cfg.BaseURL,
		UnsubscribeURL: s.actionURL("/unsubscribe", email, UnsubscribeTokenTTL),
		UserEmail:      email,
	})
	if err != nil {
		slog.Error("rendering welcome email", "error", err, "email", email)
		return
	}
	s.sendDetached(email, msg, "welcome")
}

func (s *Service) sendDetached(email string, msg mailer.Message, kind string) {
	s.bg.Go(func(ctx context.Context) {
		res := s.sender.Send(ctx, email, msg)
		if !res.Delivered {
			slog.Error("email delivery failed",
				"kind", kind,
				"email", email,
				"status", res.StatusCode,
				"error", res.Err,
			)
		}
	})
}

func (s *Service) actionURL(path, email string, ttl time.Duration) string {
	tok := s.codec.Issue(email, ttl)
	return s.cfg.BaseURL + path + "?token=" + url.QueryEscape(tok)
}

// BroadcastRequest describes one campaign send.
type BroadcastRequest struct {
	Template      string
	Subject       string
	HTML          string
	Text          string
	Limit         int
	ConfirmedOnly bool
	DryRun        bool
}

// BroadcastResult reports what a broadcast will do (dry run) or has
// started doing (detached dispatch).
type BroadcastResult struct {
	Count   int
	Sample  []string
	Subject string
	DryRun  bool
	JobID   string
}

// Broadcast sends a campaign message to the current recipient set. The
// actual dispatch runs detached; the caller only learns the accepted
// recipient count. With DryRun set, nothing is sent and a sample of the
// recipient set is returned instead.
func (s *Service) Broadcast(ctx context.Context, req BroadcastRequest) (*BroadcastResult, error) {
	limit := req.Limit
	if limit < 0 {
		limit = 0
	}
	if limit > maxBroadcastLimit {
		limit = maxBroadcastLimit
	}

	recipients, err := s.store.ListRecipients(ctx, req.ConfirmedOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recipients: %w", err)
	}

	msg, err := s.broadcastMessage(req)
	if err != nil {
		return nil, err
	}

	if req.DryRun {
		sample := recipients
		if len(sample) > 5 {
			sample = sample[:5]
		}
		return &BroadcastResult{
			Count:   len(recipients),
			Sample:  sample,
			Subject: msg.Subject,
			DryRun:  true,
		}, nil
	}

	jobID := uuid.NewString()
	slog.Info("broadcast accepted", "job_id", jobID, "recipients", len(recipients), "subject", msg.Subject)

	s.bg.Go(func(ctx context.Context) {
		outcomes := dispatch.Dispatch(ctx, s.sender, recipients, msg)
		delivered := dispatch.Delivered(outcomes)
		slog.Info("broadcast finished",
			"job_id", jobID,
			"delivered", delivered,
			"failed", len(outcomes)-delivered,
		)
	})

	return &BroadcastResult{Count: len(recipients), JobID: jobID}, nil
}

// broadcastMessage resolves the message for a broadcast: explicit
// subject/body fields override the named template field by field.
func (s *Service) broadcastMessage(req BroadcastRequest) (mailer.Message, error) {
	msg := mailer.Message{
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
	}

	if msg.Subject == "" || msg.HTML == "" {
		name := req.Template
		if name == "" {
			name = "day1"
		}
		tpl, err := mailer.BuildTemplate(name, mailer.TemplateOptions{
			AppName: s.cfg.AppName,
			BaseURL: s.cfg.BaseURL,
		})
		if err == nil {
			if msg.Subject == "" {
				msg.Subject = tpl.Subject
			}
			if msg.HTML == "" {
				msg.HTML = tpl.HTML
			}
			if msg.Text == "" {
				msg.Text = tpl.Text
			}
		}
	}

	if msg.Subject == "" || msg.HTML == "" {
		return mailer.Message{}, ErrMissingContent
	}
	return msg, nil
}

// PreviewResult is the delivery outcome for one previewed template.
type PreviewResult struct {
	Template string `json:"template"`
	OK       bool   `json:"ok"`
	Status   int    `json:"status"`
	Body     string `json:"body"`
}

// defaultPreviewTemplates is the set sent when the caller names none.
var defaultPreviewTemplates = []string{"confirm", "welcome", "day1"}

// Preview sends the chosen templates to a single address and waits for
// every send, returning per-template provider outcomes for diagnostics.
// The preview address gets real, working confirm and unsubscribe links.
func (s *Service) Preview(ctx context.Context, to string, templates []string) ([]PreviewResult, error) {
	to = NormalizeEmail(to)
	if to == "" {
		return nil, ErrInvalidEmail
	}
	if len(templates) == 0 {
		templates = defaultPreviewTemplates
	}

	opts := mailer.TemplateOptions{
		AppName:        s.cfg.AppName,
		BaseURL:        s.cfg.BaseURL,
		ConfirmURL:     s.actionURL("/confirm", to, ConfirmTokenTTL),
		UnsubscribeURL: s.actionURL("/unsubscribe", to, UnsubscribeTokenTTL),
		UserEmail:      to,
	}

	results := make([]PreviewResult, 0, len(templates))
	for _, name := range templates {
		msg, err := mailer.BuildTemplate(name, opts)
		if err != nil {
			// Unknown template names are skipped, not fatal.
			continue
		}

		outcomes := dispatch.Dispatch(ctx, s.sender, []string{to}, msg)
		res := outcomes[0].Result
		results = append(results, PreviewResult{
			Template: name,
			OK:       res.Delivered,
			Status:   res.StatusCode,
			Body:     res.Body,
		})
	}

	return results, nil
}
