// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeberg.org/oliverandrich/waitlist/internal/services/waitlist"
	"github.com/labstack/echo/v4"
)

// adminListLimit caps the JSON listing of subscribers.
const adminListLimit = 1000

// AdminAuth guards the admin endpoints with a static bearer token.
// allowQuery additionally accepts ?token= for export links.
func AdminAuth(adminToken string, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := bearerToken(c.Request().Header.Get("Authorization"))
			if tok == "" && allowQuery {
				tok = c.QueryParam("token")
			}
			// An unset admin token disables the endpoints entirely.
			if adminToken == "" || tok != adminToken {
				return c.String(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}

// Waitlist handles GET /admin/waitlist: stats plus the newest signups.
func (h *Handlers) Waitlist(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.repo.Stats(ctx)
	if err != nil {
		slog.Error("reading waitlist stats", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	signups, err := h.repo.ListSubscribers(ctx, adminListLimit)
	if err != nil {
		slog.Error("listing subscribers", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, map[string]any{
		"stats":   stats,
		"signups": signups,
	})
}

// Export handles POST /admin/waitlist/export: the full list as CSV.
func (h *Handlers) Export(c echo.Context) error {
	ctx := c.Request().Context()

	signups, err := h.repo.ListSubscribers(ctx, 0)
	if err != nil {
		slog.Error("exporting subscribers", "error", err)
		return c.String(http.StatusInternalServerError, "Export failed")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Email", "Source", "Signup Date", "Confirmed", "Unsubscribed"})
	for _, s := range signups {
		_ = w.Write([]string{
			s.Email,
			s.Source,
			s.CreatedAt.Format(time.RFC3339),
			boolFlag(s.Confirmed),
			boolFlag(s.Unsubscribed),
		})
	}
	w.Flush()

	c.Response().Header().Set("Content-Disposition", `attachment; filename="waitlist.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// BroadcastRequest is the request body for the broadcast endpoint.
type BroadcastRequest struct {
	Template      string `json:"template"`
	Subject       string `json:"subject"`
	HTML          string `json:"html"`
	Text          string `json:"text"`
	Limit         int    `json:"limit"`
	ConfirmedOnly *bool  `json:"confirmedOnly"`
	DryRun        bool   `json:"dryRun"`
}

// Broadcast handles POST /admin/broadcast. The send runs detached; the
// response only reports the accepted recipient count.
func (h *Handlers) Broadcast(c echo.Context) error {
	ctx := c.Request().Context()

	if !h.mailConfigured() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no email provider configured"})
	}

	var req BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	res, err := h.svc.Broadcast(ctx, waitlist.BroadcastRequest{
		Template: req.Template,
		Subject:  req.Subject,
		HTML:     req.HTML,
		Text:     req.Text,
		Limit:    req.Limit,
		// confirmedOnly defaults to true when omitted.
		ConfirmedOnly: req.ConfirmedOnly == nil || *req.ConfirmedOnly,
		DryRun:        req.DryRun,
	})
	if err != nil {
		if errors.Is(err, waitlist.ErrMissingContent) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		slog.Error("broadcast failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Broadcast failed"})
	}

	c.Response().Header().Set("Cache-Control", "no-store")

	if res.DryRun {
		return c.JSON(http.StatusOK, map[string]any{
			"count":   res.Count,
			"sample":  res.Sample,
			"subject": res.Subject,
			"preview": true,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"accepted": true,
		"count":    res.Count,
		"job_id":   res.JobID,
	})
}

// PreviewRequest is the request body for the preview endpoint.
type PreviewRequest struct {
	To        string   `json:"to"`
	Templates []string `json:"templates"`
}

// Preview handles POST /admin/preview: awaited sends of the chosen
// templates to one address, with per-template provider outcomes.
func (h *Handlers) Preview(c echo.Context) error {
	ctx := c.Request().Context()

	if !h.mailConfigured() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no email provider configured"})
	}

	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		to = h.cfg.Admin.PreviewEmail
	}
	if to == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": `Provide { "to": "you@example.com" } or set ADMIN_PREVIEW_EMAIL`,
		})
	}

	results, err := h.svc.Preview(ctx, to, req.Templates)
	if err != nil {
		if errors.Is(err, waitlist.ErrInvalidEmail) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid preview address"})
		}
		slog.Error("preview failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Preview failed"})
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, map[string]any{
		"to":      waitlist.NormalizeEmail(to),
		"count":   len(results),
		"results": results,
	})
}
