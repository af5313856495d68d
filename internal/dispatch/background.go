// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package dispatch

import (
	"context"
	"log/slog"
	"sync"
)

// Background runs detached jobs that outlive the request that submitted
// them. Submitted jobs receive a fresh context, so request teardown cannot
// cancel an in-flight send; the server drains the supervisor on shutdown.
type Background struct {
	wg sync.WaitGroup
}

// NewBackground creates an empty supervisor.
func NewBackground() *Background {
	return &Background{}
}

// Go submits fn to run in the background. The contract is "submitted",
// not "delivered": callers do not learn the job's outcome.
func (b *Background) Go(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("background job panicked", "panic", r)
			}
		}()
		fn(context.Background())
	}()
}

// Wait blocks until all submitted jobs have finished.
func (b *Background) Wait() {
	b.wg.Wait()
}
