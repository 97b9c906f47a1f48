package apierr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig holds retry parameters for backoff between attempts.
//
// Invalid values are normalized:
//   - MaxAttempts < 1 becomes 1 (single attempt)
//   - BaseDelay <= 0 becomes 1ms
//   - MaxDelay <= 0 becomes BaseDelay * MaxAttempts
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// normalize ensures all RetryConfig fields have valid values.
func (c *RetryConfig) normalize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay * time.Duration(c.MaxAttempts)
	}
}

// RetryAfterHinter is implemented by errors that carry a provider-directed
// wait duration, typically parsed from a Retry-After header on HTTP 429.
// The hint replaces the computed backoff for the next attempt.
type RetryAfterHinter interface {
	RetryAfter() (time.Duration, bool)
}

// RetryWithBackoff executes fn up to cfg.MaxAttempts times.
// It retries only if shouldRetry returns true for the error; a non-retryable
// error is returned immediately without consuming further attempts.
//
// The wait before attempt n+1 is BaseDelay*n capped at MaxDelay, unless the
// error provides a RetryAfter hint, in which case the hint is used as-is.
// After the last attempt the last error is returned, wrapped so callers can
// still classify it with errors.Is/As.
//
// Invalid RetryConfig values are normalized (see RetryConfig documentation).
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !shouldRetry(lastErr) {
			return zero, lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := min(cfg.BaseDelay*time.Duration(attempt), cfg.MaxDelay)
		if hint, ok := hintedDelay(lastErr); ok {
			delay = hint
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("max attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

// hintedDelay extracts a provider wait hint from err, if any.
func hintedDelay(err error) (time.Duration, bool) {
	var h RetryAfterHinter
	if errors.As(err, &h) {
		if d, ok := h.RetryAfter(); ok && d > 0 {
			return d, true
		}
	}
	return 0, false
}
