// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers for the waitlist service.
package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/waitlist/internal/config"
	"codeberg.org/oliverandrich/waitlist/internal/repository"
	"codeberg.org/oliverandrich/waitlist/internal/services/waitlist"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	svc  *waitlist.Service
	repo *repository.Repository
	cfg  *config.Config
}

// New creates a new Handlers instance.
func New(svc *waitlist.Service, repo *repository.Repository, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, repo: repo, cfg: cfg}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// mailConfigured reports whether any email provider is set up.
func (h *Handlers) mailConfigured() bool {
	return h.cfg.Mail.ResendAPIKey != "" || h.cfg.Mail.SMTPHost != ""
}
