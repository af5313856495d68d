// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// maxBodySnippet bounds how much of a provider response is kept for
// diagnostics.
const maxBodySnippet = 512

// Resend sends email through the Resend HTTP API.
type Resend struct {
	apiKey   string
	from     From
	endpoint string
	client   *http.Client
}

// NewResend creates a Resend sender.
func NewResend(apiKey string, from From) *Resend {
	return &Resend{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Send posts one message to the Resend API.
func (r *Resend) Send(ctx context.Context, to string, msg Message) Result {
	payload, err := json.Marshal(resendRequest{
		From:    r.from.String(),
		To:      []string{to},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return Result{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("sending email: %w", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))

	res := Result{
		Delivered:  resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if !res.Delivered {
		res.Err = fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return res
}
