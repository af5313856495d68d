// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestNewFromCLI_Defaults(t *testing.T) {
	var cfg *Config
	cmd := &cli.Command{
		Flags: Flags(),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg = NewFromCLI(c)
			return nil
		},
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"app"}))

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Signup.DoubleOptIn)
	assert.True(t, cfg.Signup.SendWelcome)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
}

func TestNewFromCLI_Overrides(t *testing.T) {
	var cfg *Config
	cmd := &cli.Command{
		Flags: Flags(),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg = NewFromCLI(c)
			return nil
		},
	}

	args := []string{
		"app",
		"--base-url", "https://list.example.com",
		"--double-opt-in",
		"--send-welcome=false",
		"--admin-token", "hunter2",
		"--resend-api-key", "re_123",
	}
	require.NoError(t, cmd.Run(context.Background(), args))

	assert.Equal(t, "https://list.example.com", cfg.Server.BaseURL)
	assert.True(t, cfg.Signup.DoubleOptIn)
	assert.False(t, cfg.Signup.SendWelcome)
	assert.Equal(t, "re_123", cfg.Mail.ResendAPIKey)
}

func TestSigningSecretFallback(t *testing.T) {
	cfg := &Config{
		Signup: SignupConfig{ConfirmSecret: "dedicated"},
		Admin:  AdminConfig{Token: "admin"},
	}
	assert.Equal(t, "dedicated", cfg.SigningSecret())

	// Without a dedicated secret the admin token is used.
	cfg.Signup.ConfirmSecret = ""
	assert.Equal(t, "admin", cfg.SigningSecret())
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		expected string
	}{
		{"default port hidden", "example.com", 80, "http://example.com"},
		{"explicit port", "localhost", 8080, "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Host: tt.host, Port: tt.port}}
			assert.Equal(t, tt.expected, buildBaseURL(cfg))
		})
	}
}
