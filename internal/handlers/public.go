// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/waitlist/internal/i18n"
	"codeberg.org/oliverandrich/waitlist/internal/services/waitlist"
	"codeberg.org/oliverandrich/waitlist/internal/token"
	"github.com/labstack/echo/v4"
)

// SignupRequest is the request body for the signup endpoint.
type SignupRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

// Signup handles POST /api/signup.
func (h *Handlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   i18n.T(ctx, "signup_invalid_email"),
		})
	}

	res, err := h.svc.Signup(ctx, req.Email, req.Source)
	if err != nil {
		if errors.Is(err, waitlist.ErrInvalidEmail) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   i18n.T(ctx, "signup_invalid_email"),
			})
		}
		slog.Error("signup failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   i18n.T(ctx, "signup_failed"),
		})
	}

	c.Response().Header().Set("Cache-Control", "no-store")

	if res.AlreadyPresent {
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": i18n.T(ctx, "signup_already_on_list"),
		})
	}

	message := i18n.T(ctx, "signup_welcome")
	if !res.Confirmed {
		message = i18n.T(ctx, "signup_check_email")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"message":  message,
		"position": res.Position,
	})
}

// Confirm handles GET /confirm?token=...
func (h *Handlers) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	email, err := h.svc.Confirm(ctx, c.QueryParam("token"))
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return htmlPage(c, http.StatusBadRequest, i18n.T(ctx, "confirm_invalid_link"))
		}
		slog.Error("confirm failed", "error", err)
		return htmlPage(c, http.StatusInternalServerError, i18n.T(ctx, "confirm_failed"))
	}

	slog.Info("subscriber confirmed", "email", email)

	redirect := h.cfg.Server.BaseURL + "/?confirmed=1"
	return c.Redirect(http.StatusFound, redirect)
}

// Unsubscribe handles GET /unsubscribe?token=...
func (h *Handlers) Unsubscribe(c echo.Context) error {
	ctx := c.Request().Context()

	email, err := h.svc.Unsubscribe(ctx, c.QueryParam("token"))
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return htmlPage(c, http.StatusBadRequest, i18n.T(ctx, "unsubscribe_invalid_link"))
		}
		slog.Error("unsubscribe failed", "error", err)
		return htmlPage(c, http.StatusInternalServerError, i18n.T(ctx, "unsubscribe_failed"))
	}

	slog.Info("subscriber unsubscribed", "email", email)

	return htmlPage(c, http.StatusOK,
		"✅ "+i18n.T(ctx, "unsubscribe_done_title"),
		i18n.TData(ctx, "unsubscribe_done_body", map[string]any{"Email": email}),
		i18n.T(ctx, "unsubscribe_done_farewell"),
	)
}

const pageShell = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; max-width: 600px; margin: 60px auto; padding: 20px; text-align: center; }
    h1 { color: #111827; }
    p { color: #6b7280; }
  </style>
</head>
<body>
  <h1>%s</h1>
%s</body>
</html>
`

// htmlPage renders the minimal landing page used for confirm/unsubscribe
// outcomes.
func htmlPage(c echo.Context, status int, title string, paragraphs ...string) error {
	body := ""
	for _, p := range paragraphs {
		body += "  <p>" + template.HTMLEscapeString(p) + "</p>\n"
	}
	escaped := template.HTMLEscapeString(title)

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.HTML(status, fmt.Sprintf(pageShell, escaped, escaped, body))
}
