package util

import (
	"context"
	"time"
)

// WaitFor sleeps for d or until the context is canceled, whichever comes
// first. Retry backoff between completion-service attempts goes through this
// so shutdown never has to wait out a delay.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
