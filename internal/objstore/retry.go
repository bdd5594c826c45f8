package objstore

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// isRetriable reports whether err can succeed on a retry: lost races need a
// fresh read, transient store errors need backoff. Policy and not-found
// errors never become retriable.
func isRetriable(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrConditionFailed) ||
		errors.Is(err, ErrTransient)
}

// WithRetry executes fn, retrying up to maxRetries times on conflict and
// transient errors. Retries use jittered exponential backoff starting at
// baseDelay. fn must re-read any state it conditions its write on.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := range maxRetries + 1 {
		err = fn()
		if err == nil || !isRetriable(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		jitter := time.Duration(rand.Int64N(int64(baseDelay))) //nolint:gosec // jitter doesn't need crypto-strength randomness
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay + jitter):
		}
		baseDelay *= 2
	}
	return err
}
