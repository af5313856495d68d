// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package config resolves the service configuration from CLI flags,
// environment variables and an optional TOML file.
package config

import (
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Signup   SignupConfig
	Admin    AdminConfig
	Mail     MailConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// SignupConfig controls the signup lifecycle.
type SignupConfig struct { //nolint:govet // fieldalignment not critical
	DoubleOptIn   bool   // require a confirmation click before confirmed
	SendWelcome   bool   // send a welcome email on signup/confirmation
	ConfirmSecret string // HMAC secret for action tokens
}

// AdminConfig guards the administrative endpoints.
type AdminConfig struct {
	Token        string // static bearer token
	PreviewEmail string // default recipient for template previews
}

// MailConfig selects and configures the email provider. A Resend API key
// wins over SMTP when both are set.
type MailConfig struct { //nolint:govet // fieldalignment not critical
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool
	FromEmail    string
	FromName     string
	AppName      string
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Signup: SignupConfig{
			DoubleOptIn:   cmd.Bool("double-opt-in"),
			SendWelcome:   cmd.Bool("send-welcome"),
			ConfirmSecret: cmd.String("confirm-secret"),
		},
		Admin: AdminConfig{
			Token:        cmd.String("admin-token"),
			PreviewEmail: cmd.String("admin-preview-email"),
		},
		Mail: MailConfig{
			ResendAPIKey: cmd.String("resend-api-key"),
			SMTPHost:     cmd.String("smtp-host"),
			SMTPPort:     int(cmd.Int("smtp-port")),
			SMTPUsername: cmd.String("smtp-username"),
			SMTPPassword: cmd.String("smtp-password"),
			SMTPTLS:      cmd.Bool("smtp-tls"),
			FromEmail:    cmd.String("from-email"),
			FromName:     cmd.String("from-name"),
			AppName:      cmd.String("app-name"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	return cfg
}

// SigningSecret returns the secret for action tokens. It falls back to the
// admin token when no dedicated secret is configured, a deployment
// convenience, not a security boundary.
func (c *Config) SigningSecret() string {
	if c.Signup.ConfirmSecret != "" {
		return c.Signup.ConfirmSecret
	}
	return c.Admin.Token
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL used in email links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/waitlist.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.BoolFlag{
			Name:    "double-opt-in",
			Usage:   "Require email confirmation before a signup counts as confirmed",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DOUBLE_OPT_IN"), toml.TOML("signup.double_opt_in", configFile)),
		},
		&cli.BoolFlag{
			Name:    "send-welcome",
			Value:   true,
			Usage:   "Send a welcome email after signup or confirmation",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SEND_WELCOME_EMAIL"), toml.TOML("signup.send_welcome", configFile)),
		},
		&cli.StringFlag{
			Name:    "confirm-secret",
			Usage:   "HMAC secret for confirm/unsubscribe tokens (defaults to the admin token)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CONFIRM_SECRET"), toml.TOML("signup.confirm_secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "Bearer token for the admin endpoints",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_TOKEN"), toml.TOML("admin.token", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-preview-email",
			Usage:   "Default recipient for template previews",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_PREVIEW_EMAIL"), toml.TOML("admin.preview_email", configFile)),
		},
		&cli.StringFlag{
			Name:    "resend-api-key",
			Usage:   "Resend API key (preferred provider when set)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESEND_API_KEY"), toml.TOML("mail.resend_api_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (fallback provider)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("mail.smtp_host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("mail.smtp_port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("mail.smtp_username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("mail.smtp_password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("mail.smtp_tls", configFile)),
		},
		&cli.StringFlag{
			Name:    "from-email",
			Value:   "no-reply@yourdomain.com",
			Usage:   "Sender address for outgoing email",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FROM_EMAIL"), toml.TOML("mail.from_email", configFile)),
		},
		&cli.StringFlag{
			Name:    "from-name",
			Value:   "Your App",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FROM_NAME"), toml.TOML("mail.from_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "app-name",
			Value:   "Your App",
			Usage:   "Application name used in email templates",
			Sources: cli.NewValueSourceChain(cli.EnvVar("APP_NAME"), toml.TOML("mail.app_name", configFile)),
		},
	}
}
