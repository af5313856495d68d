// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires the waitlist service together and runs the HTTP
// server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/waitlist/internal/config"
	"codeberg.org/oliverandrich/waitlist/internal/database"
	"codeberg.org/oliverandrich/waitlist/internal/dispatch"
	"codeberg.org/oliverandrich/waitlist/internal/handlers"
	"codeberg.org/oliverandrich/waitlist/internal/i18n"
	"codeberg.org/oliverandrich/waitlist/internal/mailer"
	"codeberg.org/oliverandrich/waitlist/internal/repository"
	"codeberg.org/oliverandrich/waitlist/internal/services/waitlist"
	"codeberg.org/oliverandrich/waitlist/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository
	repo := repository.New(db)

	// Email provider
	sender := setupSender(cfg)

	// Detached send supervisor, drained on shutdown
	bg := dispatch.NewBackground()

	// Lifecycle service
	svc := waitlist.NewService(repo, token.New(cfg.SigningSecret()), sender, bg, waitlist.Config{
		DoubleOptIn: cfg.Signup.DoubleOptIn,
		SendWelcome: cfg.Signup.SendWelcome,
		BaseURL:     cfg.Server.BaseURL,
		AppName:     cfg.Mail.AppName,
	})

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	setupMiddleware(e, cfg)

	// Routes
	setupRoutes(e, svc, repo, cfg)

	// Start server
	return startWithGracefulShutdown(e, cfg, bg)
}

// setupSender picks the email provider. A Resend API key wins over SMTP;
// with neither configured all outgoing email is disabled.
func setupSender(cfg *config.Config) mailer.Sender {
	from := mailer.From{Email: cfg.Mail.FromEmail, Name: cfg.Mail.FromName}

	switch {
	case cfg.Mail.ResendAPIKey != "":
		slog.Info("email provider", "provider", "resend", "from", from.String())
		return mailer.NewResend(cfg.Mail.ResendAPIKey, from)
	case cfg.Mail.SMTPHost != "":
		slog.Info("email provider", "provider", "smtp", "host", cfg.Mail.SMTPHost, "from", from.String())
		return mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			TLS:      cfg.Mail.SMTPTLS,
		}, from)
	default:
		slog.Warn("no email provider configured, outgoing email disabled")
		return nil
	}
}

func setupRoutes(e *echo.Echo, svc *waitlist.Service, repo *repository.Repository, cfg *config.Config) {
	h := handlers.New(svc, repo, cfg)

	e.GET("/health", h.Health)
	e.POST("/api/signup", h.Signup)
	e.GET("/confirm", h.Confirm)
	e.GET("/unsubscribe", h.Unsubscribe)

	admin := e.Group("/admin", handlers.AdminAuth(cfg.Admin.Token, false))
	admin.POST("/broadcast", h.Broadcast)
	admin.POST("/preview", h.Preview)

	// Waitlist routes additionally accept ?token= so the stats and the
	// CSV export can be fetched straight from a browser.
	wl := e.Group("/admin/waitlist", handlers.AdminAuth(cfg.Admin.Token, true))
	wl.GET("", h.Waitlist)
	wl.POST("/export", h.Export)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config, bg *dispatch.Background) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	// Let in-flight detached sends finish before the process exits.
	bg.Wait()

	slog.Info("server stopped")
	return nil
}
