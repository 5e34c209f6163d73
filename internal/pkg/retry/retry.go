package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Quadratic waits attempt² × Unit before each retry.
type Quadratic struct {
	Unit    time.Duration
	attempt int
}

// NextBackOff implements backoff.BackOff.
func (q *Quadratic) NextBackOff() time.Duration {
	q.attempt++
	return time.Duration(q.attempt*q.attempt) * q.Unit
}

// Reset implements backoff.BackOff.
func (q *Quadratic) Reset() { q.attempt = 0 }

// WithBackoff calls fn up to maxAttempts times, sleeping attempt² × unit
// between tries. It stops early when ctx is done.
func WithBackoff(ctx context.Context, maxAttempts int, unit time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&Quadratic{Unit: unit}, uint64(maxAttempts-1)),
		ctx,
	)

	attempts := 0
	op := func() error {
		attempts++
		err := fn(ctx)
		if err != nil {
			slog.WarnContext(ctx, "attempt failed", "attempt", attempts, "error", err)
		}
		return err
	}
	notify := func(_ error, wait time.Duration) {
		slog.WarnContext(ctx, "retrying", "attempt", attempts+1, "max_attempts", maxAttempts, "backoff", wait)
	}

	err := backoff.RetryNotify(op, policy, notify)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("retry aborted after %d attempts: %w", attempts, ctx.Err())
	default:
		return fmt.Errorf("all %d attempts failed, last error: %w", attempts, err)
	}
}
