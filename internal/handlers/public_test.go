// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/waitlist/internal/services/waitlist"
	"codeberg.org/oliverandrich/waitlist/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	f := newFixture(t, nil)

	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/signup",
		strings.NewReader(`{"email": "Alice@Example.com", "source": "landing"}`))
	require.NoError(t, f.h.Signup(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Check your email to confirm your signup.", body["message"])
	assert.EqualValues(t, 1, body["position"])

	sub, err := f.repo.GetSubscriber(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, sub.Confirmed)

	f.bg.Wait()
	sent := f.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Contains(t, sent[0].Msg.HTML, "/confirm?token=")
}

func TestSignupInvalidEmail(t *testing.T) {
	f := newFixture(t, nil)

	for _, email := range []string{"", "not-an-email", "a@b", "a b@c.com"} {
		c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/signup",
			strings.NewReader(`{"email": "`+email+`"}`))
		require.NoError(t, f.h.Signup(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "email %q", email)
		body := decodeJSON(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid email address", body["error"])
	}
}

func TestSignupDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	testutil.NewTestSubscriber(t, f.repo, "alice@example.com", false)

	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/signup",
		strings.NewReader(`{"email": "alice@example.com"}`))
	require.NoError(t, f.h.Signup(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "You are already on the waitlist!", body["message"])
	assert.NotContains(t, body, "position")

	f.bg.Wait()
	assert.Empty(t, f.sender.Sent())
}

func TestConfirm(t *testing.T) {
	f := newFixture(t, nil)
	testutil.NewTestSubscriber(t, f.repo, "alice@example.com", false)

	tok := f.codec.Issue("alice@example.com", waitlist.ConfirmTokenTTL)
	c, rec := testutil.NewEchoContext(f.e, http.MethodGet,
		"/confirm?token="+url.QueryEscape(tok), nil)
	require.NoError(t, f.h.Confirm(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:8080/?confirmed=1", rec.Header().Get("Location"))

	sub, err := f.repo.GetSubscriber(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, sub.Confirmed)

	f.bg.Wait()
	sent := f.sender.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Msg.Subject, "Welcome")
}

func TestConfirmInvalidToken(t *testing.T) {
	f := newFixture(t, nil)

	c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/confirm?token=garbage", nil)
	require.NoError(t, f.h.Confirm(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired confirmation link.")
}

func TestConfirmExpiredToken(t *testing.T) {
	f := newFixture(t, nil)
	testutil.NewTestSubscriber(t, f.repo, "alice@example.com", false)

	tok := f.codec.Issue("alice@example.com", -time.Minute)
	c, rec := testutil.NewEchoContext(f.e, http.MethodGet,
		"/confirm?token="+url.QueryEscape(tok), nil)
	require.NoError(t, f.h.Confirm(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sub, err := f.repo.GetSubscriber(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, sub.Confirmed)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t, nil)
	testutil.NewTestSubscriber(t, f.repo, "alice@example.com", true)

	tok := f.codec.Issue("alice@example.com", waitlist.UnsubscribeTokenTTL)
	c, rec := testutil.NewEchoContext(f.e, http.MethodGet,
		"/unsubscribe?token="+url.QueryEscape(tok), nil)
	require.NoError(t, f.h.Unsubscribe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsubscribed")
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	sub, err := f.repo.GetSubscriber(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, sub.Unsubscribed)
	assert.True(t, sub.Confirmed)

	f.bg.Wait()
	assert.Empty(t, f.sender.Sent())
}

func TestUnsubscribeInvalidToken(t *testing.T) {
	f := newFixture(t, nil)

	c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/unsubscribe", nil)
	require.NoError(t, f.h.Unsubscribe(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired unsubscribe link.")
}
