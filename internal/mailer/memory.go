// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"context"
	"errors"
	"sync"
)

// Sent is one message recorded by the Memory sender.
type Sent struct {
	To  string
	Msg Message
}

// Memory is an in-memory Sender for tests. Individual recipients can be
// scripted to fail.
type Memory struct {
	mu      sync.Mutex
	sent    []Sent
	failFor map[string]bool
}

// NewMemory creates an empty memory sender.
func NewMemory() *Memory {
	return &Memory{failFor: make(map[string]bool)}
}

// FailFor makes every send to the given recipient fail.
func (m *Memory) FailFor(to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[to] = true
}

// Send records the message. Scripted recipients get a failed Result.
func (m *Memory) Send(_ context.Context, to string, msg Message) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[to] {
		return Result{StatusCode: 500, Err: errors.New("scripted failure")}
	}

	m.sent = append(m.sent, Sent{To: to, Msg: msg})
	return Result{Delivered: true, StatusCode: 200}
}

// Sent returns a copy of all recorded messages.
func (m *Memory) Sent() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sent(nil), m.sent...)
}
