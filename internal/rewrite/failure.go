package rewrite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"echoverse/internal/apierr"
)

// previewLimit bounds stored response bodies so diagnostics and logs cannot
// grow without limit.
const previewLimit = 2000

// APIFailure is the normalized shape of a failed generation attempt,
// regardless of which transport produced it. It is the failure arm of the
// call result: a call yields either text or an *APIFailure, never both.
type APIFailure struct {
	// Status is the HTTP status code, or 0 when unknown (transport error).
	Status int
	// BodyPreview is the response body or exception text, capped at previewLimit.
	BodyPreview string
	// Headers holds the response headers, used for rate-limit detection.
	Headers map[string]string
	// ClientDetail is the native-client error text when that path failed
	// before the HTTP fallback ran, else empty.
	ClientDetail string
}

func (f *APIFailure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("generation failed: HTTP %d: %s", f.Status, f.BodyPreview)
	}
	return fmt.Sprintf("generation failed: %s", f.BodyPreview)
}

// RetryAfter parses the Retry-After response header into a wait duration.
// It accepts both delay-seconds and HTTP-date forms. The second return is
// false when the header is absent or unparseable.
func (f *APIFailure) RetryAfter() (time.Duration, bool) {
	var raw string
	for k, v := range f.Headers {
		if strings.EqualFold(k, "Retry-After") {
			raw = strings.TrimSpace(v)
			break
		}
	}
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), true
	}
	if t, err := http.ParseTime(raw); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
	}
	return 0, false
}

// Unwrap maps the failure onto the shared sentinels so callers outside this
// package can classify with errors.Is.
func (f *APIFailure) Unwrap() error {
	switch {
	case f.Status == http.StatusTooManyRequests:
		return apierr.ErrRateLimit
	case f.Status == http.StatusUnauthorized, f.Status == http.StatusForbidden:
		return apierr.ErrAuthFailed
	case f.Status == http.StatusRequestTimeout, f.Status == http.StatusGatewayTimeout:
		return apierr.ErrTimeout
	case f.Status >= 400 && f.Status < 500:
		return apierr.ErrBadRequest
	default:
		return nil
	}
}

// isRetryableFailure decides whether a failed attempt may self-resolve.
// Rate limits, server errors, and transport-level failures are transient;
// other client errors (4xx) will fail the same way every time.
func isRetryableFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var f *APIFailure
	if errors.As(err, &f) {
		switch {
		case f.Status == http.StatusTooManyRequests:
			return true
		case f.Status >= 400 && f.Status < 500:
			return false
		default:
			// 5xx, or status unknown (network exception).
			return true
		}
	}

	return true
}

// preview caps s at previewLimit bytes, marking the cut.
func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}
