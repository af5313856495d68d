// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package dispatch fans one message out to many recipients. Failures are
// isolated per recipient; a batch always runs to completion.
package dispatch

import (
	"context"

	"codeberg.org/oliverandrich/waitlist/internal/mailer"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds how many provider calls run at once.
const defaultConcurrency = 8

// Outcome records the delivery result for one recipient.
type Outcome struct {
	Recipient string
	Result    mailer.Result
}

// Dispatch sends msg to every recipient and blocks until all sends have
// completed. Each recipient gets exactly one delivery attempt; a failed
// send is recorded in its Outcome and never aborts the rest of the batch.
// Outcomes are returned in recipient order, but sends themselves are
// unordered. Callers de-duplicate the recipient set.
func Dispatch(ctx context.Context, sender mailer.Sender, recipients []string, msg mailer.Message) []Outcome {
	outcomes := make([]Outcome, len(recipients))

	g := new(errgroup.Group)
	g.SetLimit(defaultConcurrency)
	for i, to := range recipients {
		g.Go(func() error {
			outcomes[i] = Outcome{
				Recipient: to,
				Result:    sender.Send(ctx, to, msg),
			}
			// Delivery failures live in the outcome, never here.
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Delivered counts the successful outcomes.
func Delivered(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Result.Delivered {
			n++
		}
	}
	return n
}
