// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// TemplateOptions parameterizes the branded email templates. Zero values
// fall back to placeholder branding, matching a fresh deployment.
type TemplateOptions struct {
	AppName        string
	BaseURL        string
	DocsURL        string
	LogoURL        string
	ConfirmURL     string
	UnsubscribeURL string
	UserEmail      string
}

func (o TemplateOptions) withDefaults() TemplateOptions {
	if o.BaseURL == "" {
		o.BaseURL = "https://yourdomain.com"
	}
	if o.AppName == "" {
		o.AppName = "Your App"
	}
	if o.DocsURL == "" {
		o.DocsURL = o.BaseURL + "/docs"
	}
	if o.LogoURL == "" {
		o.LogoURL = o.BaseURL + "/logo.png"
	}
	if o.ConfirmURL == "" {
		o.ConfirmURL = o.BaseURL + "/confirm"
	}
	if o.UnsubscribeURL == "" {
		o.UnsubscribeURL = o.BaseURL + "/unsubscribe"
	}
	return o
}

// BuildConfirm renders the double-opt-in confirmation email.
func BuildConfirm(opts TemplateOptions) (Message, error) {
	opts = opts.withDefaults()
	return render("confirm", "✅ Confirm your email", opts)
}

// BuildWelcome renders the welcome email sent after signup or confirmation.
func BuildWelcome(opts TemplateOptions) (Message, error) {
	opts = opts.withDefaults()
	return render("welcome", fmt.Sprintf("🎉 Welcome to %s!", opts.AppName), opts)
}

// BuildDay1 renders the day-1 campaign email used by broadcasts.
func BuildDay1(opts TemplateOptions) (Message, error) {
	opts = opts.withDefaults()
	return render("day1", "💡 Day 1: Quick tips to get started", opts)
}

// BuildTemplate renders a campaign template by name. Unknown names are an
// error so broadcast callers can report them.
func BuildTemplate(name string, opts TemplateOptions) (Message, error) {
	switch name {
	case "confirm":
		return BuildConfirm(opts)
	case "welcome":
		return BuildWelcome(opts)
	case "day1":
		return BuildDay1(opts)
	default:
		return Message{}, fmt.Errorf("unknown template %q", name)
	}
}

func render(name, subject string, opts TemplateOptions) (Message, error) {
	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", opts); err != nil {
		return Message{}, fmt.Errorf("rendering %s.html: %w", name, err)
	}

	var text bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", opts); err != nil {
		return Message{}, fmt.Errorf("rendering %s.txt: %w", name, err)
	}

	return Message{
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
