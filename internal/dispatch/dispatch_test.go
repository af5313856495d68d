// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package dispatch_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/oliverandrich/waitlist/internal/dispatch"
	"codeberg.org/oliverandrich/waitlist/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchIsolatesFailures(t *testing.T) {
	sender := mailer.NewMemory()
	sender.FailFor("bad@x.com")

	msg := mailer.Message{Subject: "Hello"}
	outcomes := dispatch.Dispatch(context.Background(), sender, []string{"ok@x.com", "bad@x.com"}, msg)

	require.Len(t, outcomes, 2)
	assert.Equal(t, "ok@x.com", outcomes[0].Recipient)
	assert.True(t, outcomes[0].Result.Delivered)
	assert.Equal(t, "bad@x.com", outcomes[1].Recipient)
	assert.False(t, outcomes[1].Result.Delivered)
	assert.Error(t, outcomes[1].Result.Err)

	// The failing recipient did not stop the good one from being sent.
	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ok@x.com", sent[0].To)
	assert.Equal(t, "Hello", sent[0].Msg.Subject)
}

func TestDispatchAllRecipients(t *testing.T) {
	sender := mailer.NewMemory()

	recipients := []string{"a@x.com", "b@x.com", "c@x.com"}
	outcomes := dispatch.Dispatch(context.Background(), sender, recipients, mailer.Message{Subject: "s"})

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.Equal(t, recipients[i], o.Recipient)
		assert.True(t, o.Result.Delivered)
	}
	assert.Equal(t, 3, dispatch.Delivered(outcomes))
	assert.Len(t, sender.Sent(), 3)
}

func TestDispatchEmptyRecipients(t *testing.T) {
	outcomes := dispatch.Dispatch(context.Background(), mailer.NewMemory(), nil, mailer.Message{})
	assert.Empty(t, outcomes)
}

func TestBackgroundRunsAndDrains(t *testing.T) {
	bg := dispatch.NewBackground()

	var done atomic.Int32
	for range 5 {
		bg.Go(func(context.Context) {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
		})
	}

	bg.Wait()
	assert.Equal(t, int32(5), done.Load())
}

func TestBackgroundSurvivesPanics(t *testing.T) {
	bg := dispatch.NewBackground()

	var done atomic.Bool
	bg.Go(func(context.Context) { panic("boom") })
	bg.Go(func(context.Context) { done.Store(true) })

	bg.Wait()
	assert.True(t, done.Load())
}
