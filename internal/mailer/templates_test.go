// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfirm(t *testing.T) {
	msg, err := BuildConfirm(TemplateOptions{
		AppName:        "Listmaster",
		BaseURL:        "https://list.example.com",
		ConfirmURL:     "https://list.example.com/confirm?token=abc",
		UnsubscribeURL: "https://list.example.com/unsubscribe?token=def",
		UserEmail:      "alice@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "✅ Confirm your email", msg.Subject)
	assert.Contains(t, msg.HTML, "https://list.example.com/confirm?token=abc")
	assert.Contains(t, msg.HTML, "alice@example.com")
	assert.Contains(t, msg.Text, "Confirm: https://list.example.com/confirm?token=abc")
	assert.Contains(t, msg.Text, "Unsubscribe: https://list.example.com/unsubscribe?token=def")
}

func TestBuildWelcome(t *testing.T) {
	msg, err := BuildWelcome(TemplateOptions{
		AppName:        "Listmaster",
		BaseURL:        "https://list.example.com",
		UnsubscribeURL: "https://list.example.com/unsubscribe?token=def",
	})

	require.NoError(t, err)
	assert.Equal(t, "🎉 Welcome to Listmaster!", msg.Subject)
	assert.Contains(t, msg.HTML, "https://list.example.com/unsubscribe?token=def")
	// Docs link derives from the base URL when unset.
	assert.Contains(t, msg.Text, "https://list.example.com/docs")
}

func TestBuildDay1Defaults(t *testing.T) {
	msg, err := BuildDay1(TemplateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "💡 Day 1: Quick tips to get started", msg.Subject)
	assert.Contains(t, msg.HTML, "https://yourdomain.com/docs")
}

func TestBuildTemplate(t *testing.T) {
	for _, name := range []string{"confirm", "welcome", "day1"} {
		msg, err := BuildTemplate(name, TemplateOptions{})
		require.NoError(t, err)
		assert.NotEmpty(t, msg.Subject, name)
		assert.NotEmpty(t, msg.HTML, name)
	}

	_, err := BuildTemplate("day2", TemplateOptions{})
	assert.Error(t, err)
}

func TestTemplatesEscapeUserContent(t *testing.T) {
	msg, err := BuildConfirm(TemplateOptions{
		UserEmail: `<script>alert(1)</script>`,
	})

	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>alert(1)</script>")
}
