// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"codeberg.org/oliverandrich/waitlist/internal/config"
	"codeberg.org/oliverandrich/waitlist/internal/dispatch"
	"codeberg.org/oliverandrich/waitlist/internal/handlers"
	"codeberg.org/oliverandrich/waitlist/internal/i18n"
	"codeberg.org/oliverandrich/waitlist/internal/mailer"
	"codeberg.org/oliverandrich/waitlist/internal/repository"
	"codeberg.org/oliverandrich/waitlist/internal/services/waitlist"
	"codeberg.org/oliverandrich/waitlist/internal/testutil"
	"codeberg.org/oliverandrich/waitlist/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fixture struct {
	e      *echo.Echo
	h      *handlers.Handlers
	repo   *repository.Repository
	sender *mailer.Memory
	bg     *dispatch.Background
	codec  *token.Codec
	cfg    *config.Config
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	_, repo := testutil.NewTestDB(t)

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		Signup: config.SignupConfig{
			DoubleOptIn:   true,
			SendWelcome:   true,
			ConfirmSecret: "test-secret",
		},
		Admin: config.AdminConfig{Token: "admin-token"},
		Mail: config.MailConfig{
			ResendAPIKey: "re_test",
			FromEmail:    "no-reply@example.com",
			FromName:     "Example",
			AppName:      "Example",
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	codec := token.New(cfg.SigningSecret())
	sender := mailer.NewMemory()
	bg := dispatch.NewBackground()
	t.Cleanup(bg.Wait)

	svc := waitlist.NewService(repo, codec, sender, bg, waitlist.Config{
		DoubleOptIn: cfg.Signup.DoubleOptIn,
		SendWelcome: cfg.Signup.SendWelcome,
		BaseURL:     cfg.Server.BaseURL,
		AppName:     cfg.Mail.AppName,
	})

	return &fixture{
		e:      echo.New(),
		h:      handlers.New(svc, repo, cfg),
		repo:   repo,
		sender: sender,
		bg:     bg,
		codec:  codec,
		cfg:    cfg,
	}
}

// decodeJSON unmarshals a recorded response body.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/health", nil)

	require.NoError(t, f.h.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeJSON(t, rec)["status"])
}
