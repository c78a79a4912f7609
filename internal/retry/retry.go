// Package retry implements the shared retry policy for profile scraping:
// a fixed attempt count with a linearly growing pause between attempts.
//
// All three platform scrapers go through Do so the policy cannot drift
// between copies.
package retry

import (
	"context"
	"time"
)

// DefaultAttempts is the standard attempt count for profile scraping.
const DefaultAttempts = 3

// Do runs fn up to attempts times. After a failed attempt it waits
// baseDelay × attempt ordinal (1×, 2×, 3×, ...) before the next one.
// The first success wins; the last error is returned when every attempt
// fails. Context cancellation interrupts the wait and returns ctx.Err().
func Do[T any](ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var lastErr error
	for i := range attempts {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, time.Duration(i+1)*baseDelay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
