package utils

import (
	"context"
	"time"
)

// sleep is a seam for tests.
var sleep = time.Sleep

// WaitFor pauses for d, returning early with the context error when ctx is
// cancelled first. Non-positive durations and already-cancelled contexts
// return immediately. It paces consecutive model calls.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		sleep(d)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
