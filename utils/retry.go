package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewBackOff returns an exponential policy allowing attempts tries in total.
// Delays start at initial, double per retry up to ceiling, and stop early once
// ctx is done.
func NewBackOff(ctx context.Context, attempts int, initial, ceiling time.Duration) backoff.BackOffContext {
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(initial),
		backoff.WithMaxInterval(ceiling),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}
