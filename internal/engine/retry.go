package engine

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy controls the fetcher's retry loop.
// Attempt n (1-based) that fails with a retryable error waits Delay*n before
// the next attempt.
type RetryPolicy struct {
	Retries int           // additional attempts after the first
	Delay   time.Duration // base delay, scaled linearly by attempt number
}

// DefaultRetryPolicy matches a conservative page-scraping client: four
// attempts total, waiting 1s, 2s, 3s between them.
var DefaultRetryPolicy = RetryPolicy{Retries: 3, Delay: time.Second}

// sleepFunc waits for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryDo runs fn until it succeeds, returns a non-retryable error, or the
// policy is exhausted. Rate-limited errors stop the loop at once regardless
// of remaining attempts. On exhaustion the last error is returned, or a
// generic network error when no attempt ran.
func retryDo[T any](ctx context.Context, p RetryPolicy, sleep sleepFunc, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, WrapError(KindNetwork, err, "request cancelled")
		}

		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}

		if attempt < p.Retries {
			wait := p.Delay * time.Duration(attempt+1)
			metrics.Retries.Add(1)
			slog.Debug("retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
			if err := sleep(ctx, wait); err != nil {
				return zero, lastErr
			}
		}
	}

	if lastErr == nil {
		lastErr = NewError(KindNetwork, "request failed")
	}
	return zero, lastErr
}

// isRetryable reports whether err is worth another attempt. Timeouts and
// non-2xx statuses are network errors and qualify; 429 does not.
func isRetryable(err error) bool {
	return KindOf(err) == KindNetwork
}
