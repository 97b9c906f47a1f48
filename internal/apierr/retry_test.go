package apierr_test

// Coverage Notes:
// - Tests verify attempt counting, shouldRetry filtering, RetryAfter hints,
//   context cancellation, and config normalization.
// - Exact backoff timing is not tested (implementation detail), only
//   observable behavior.

import (
	"context"
	"errors"
	"testing"
	"time"

	"echoverse/internal/apierr"
)

// hintedErr is a test error carrying a RetryAfter hint.
type hintedErr struct {
	delay time.Duration
}

func (e *hintedErr) Error() string { return "rate limited" }

func (e *hintedErr) RetryAfter() (time.Duration, bool) { return e.delay, true }

// ---------------------------------------------------------------------------
// TestRetryWithBackoff - Generic retry utility
// ---------------------------------------------------------------------------

func TestRetryWithBackoff(t *testing.T) {
	t.Parallel()

	t.Run("success on first try returns immediately", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		result, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Minute},
			func() (string, error) {
				callCount++
				return "immediate", nil
			},
			func(error) bool { return true },
		)

		if err != nil {
			t.Errorf("RetryWithBackoff() unexpected error: %v", err)
		}
		if result != "immediate" {
			t.Errorf("got %q, want %q", result, "immediate")
		}
		if callCount != 1 {
			t.Errorf("call count = %d, want 1", callCount)
		}
	})

	t.Run("shouldRetry false stops immediately", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		testErr := errors.New("non-retryable")
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
			func() (string, error) {
				callCount++
				return "", testErr
			},
			func(error) bool { return false },
		)

		if !errors.Is(err, testErr) {
			t.Errorf("error = %v, want original error unwrapped", err)
		}
		if callCount != 1 {
			t.Errorf("call count = %d, want 1 (no retry)", callCount)
		}
	})

	t.Run("non-retryable error is returned without wrapping", func(t *testing.T) {
		t.Parallel()

		testErr := errors.New("bad request")
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
			func() (string, error) { return "", testErr },
			func(error) bool { return false },
		)

		if err != testErr {
			t.Errorf("error = %v, want identical error %v", err, testErr)
		}
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		result, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
			func() (string, error) {
				callCount++
				if callCount < 3 {
					return "", errors.New("transient")
				}
				return "success", nil
			},
			func(error) bool { return true },
		)

		if err != nil {
			t.Errorf("RetryWithBackoff() unexpected error: %v", err)
		}
		if result != "success" {
			t.Errorf("got %q, want %q", result, "success")
		}
		if callCount != 3 {
			t.Errorf("call count = %d, want 3", callCount)
		}
	})

	t.Run("exhaustion makes exactly MaxAttempts calls and wraps last error", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		testErr := errors.New("always fails")
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
			func() (string, error) {
				callCount++
				return "", testErr
			},
			func(error) bool { return true },
		)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if callCount != 3 {
			t.Errorf("call count = %d, want 3", callCount)
		}
		if !errors.Is(err, testErr) {
			t.Errorf("error should wrap original: got %v", err)
		}
	})

	t.Run("RetryAfter hint replaces computed backoff", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		start := time.Now()
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 2, BaseDelay: time.Minute, MaxDelay: time.Hour},
			func() (string, error) {
				callCount++
				return "", &hintedErr{delay: 5 * time.Millisecond}
			},
			func(error) bool { return true },
		)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if callCount != 2 {
			t.Errorf("call count = %d, want 2", callCount)
		}
		// The hinted 5ms must have overridden the 1-minute base delay.
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("elapsed = %v, hint was not honored", elapsed)
		}
	})

	t.Run("wrapped hint is still found via errors.As", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		start := time.Now()
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 2, BaseDelay: time.Minute, MaxDelay: time.Hour},
			func() (string, error) {
				callCount++
				return "", errors.Join(errors.New("outer"), &hintedErr{delay: time.Millisecond})
			},
			func(error) bool { return true },
		)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("elapsed = %v, wrapped hint was not honored", elapsed)
		}
	})

	t.Run("already cancelled context stops after first attempt", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		callCount := 0
		_, err := apierr.RetryWithBackoff(
			ctx,
			apierr.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Minute},
			func() (string, error) {
				callCount++
				return "", errors.New("should retry")
			},
			func(error) bool { return true },
		)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		// First call happens, then context check on retry wait.
		if callCount != 1 {
			t.Errorf("call count = %d, want 1", callCount)
		}
	})

	t.Run("context cancellation during retry stops early", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		callCount := 0
		_, err := apierr.RetryWithBackoff(
			ctx,
			apierr.RetryConfig{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond, MaxDelay: 100 * time.Millisecond},
			func() (string, error) {
				callCount++
				if callCount == 1 {
					// Cancel after first call.
					go func() {
						time.Sleep(5 * time.Millisecond)
						cancel()
					}()
				}
				return "", errors.New("transient")
			},
			func(error) bool { return true },
		)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if callCount >= 5 {
			t.Errorf("call count = %d, should be less than 5 (cancelled early)", callCount)
		}
	})

	t.Run("MaxAttempts below 1 normalized to single attempt", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		testErr := errors.New("always fails")
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: -5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
			func() (string, error) {
				callCount++
				return "", testErr
			},
			func(error) bool { return true },
		)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if callCount != 1 {
			t.Errorf("call count = %d, want 1", callCount)
		}
	})

	t.Run("zero delays normalized", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 2, BaseDelay: 0, MaxDelay: 0},
			func() (string, error) {
				callCount++
				if callCount < 2 {
					return "", errors.New("retry")
				}
				return "ok", nil
			},
			func(error) bool { return true },
		)

		if err != nil {
			t.Errorf("RetryWithBackoff() unexpected error: %v", err)
		}
		if callCount != 2 {
			t.Errorf("call count = %d, want 2", callCount)
		}
	})

	t.Run("selective retry based on error type", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		_, err := apierr.RetryWithBackoff(
			context.Background(),
			apierr.RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
			func() (string, error) {
				callCount++
				if callCount == 1 {
					return "", apierr.ErrRateLimit
				}
				return "", apierr.ErrAuthFailed
			},
			func(err error) bool {
				return errors.Is(err, apierr.ErrRateLimit)
			},
		)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if callCount != 2 {
			t.Errorf("call count = %d, want 2 (1 retryable + 1 non-retryable)", callCount)
		}
		if !errors.Is(err, apierr.ErrAuthFailed) {
			t.Errorf("error = %v, want ErrAuthFailed", err)
		}
	})
}
