// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package mailer sends transactional and campaign email through an
// external provider. Providers are modeled behind the Sender interface;
// every send yields an explicit per-recipient Result instead of an error
// that could abort a batch.
package mailer

import (
	"context"
	"fmt"
)

// Message is one rendered email.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Result is the outcome of a single delivery attempt. Either the provider
// accepted the message (Delivered, with its status code and a body
// snippet) or it did not (Err and/or a non-success status).
type Result struct {
	Delivered  bool
	StatusCode int
	Body       string
	Err        error
}

// From identifies the sending address.
type From struct {
	Email string
	Name  string
}

// String formats the address as "Name <email>" for provider APIs.
func (f From) String() string {
	if f.Name == "" {
		return f.Email
	}
	return fmt.Sprintf("%s <%s>", f.Name, f.Email)
}

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, msg Message) Result
}
