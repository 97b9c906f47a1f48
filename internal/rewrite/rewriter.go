// Package rewrite turns raw input text into tone-adjusted narration text by
// chunking it and calling a remote generation API per chunk, with retries
// and graceful degradation: a chunk that cannot be rewritten contributes its
// original text instead of failing the whole document.
package rewrite

import (
	"context"
	"errors"
	"strings"
	"time"

	"echoverse/internal/apierr"
	"echoverse/internal/text"
)

// Default configuration values.
const (
	// DefaultMaxChunkChars bounds a single remote call's input.
	DefaultMaxChunkChars = 3000

	// DefaultMaxInputChars caps total input before chunking.
	DefaultMaxInputChars = 20000

	// Retry configuration.
	defaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
	defaultMaxBackoff  = 30 * time.Second
)

// Diagnostic records one chunk that still failed after all retry attempts.
// Entries are display-only; nothing in the pipeline re-parses them.
type Diagnostic struct {
	Part         int               // zero-based chunk index
	Status       int               // HTTP status, 0 when unknown
	BodyPreview  string            // bounded response body or error text
	Headers      map[string]string // response headers of the last attempt
	FallbackInfo string            // native-client error that forced the HTTP fallback
}

// Outcome is the result of rewriting one document.
type Outcome struct {
	// Text is the reassembled document: rewritten chunks where the remote
	// call succeeded, original chunks where it did not.
	Text string

	// AllFailed is true iff zero chunks succeeded. Partial failure keeps it
	// false; callers use it to decide whether to surface a warning.
	AllFailed bool

	// Diagnostics holds one entry per failed chunk, in chunk order.
	Diagnostics []Diagnostic
}

// Rewriter rewrites a document in the given tone.
type Rewriter interface {
	// Rewrite processes text chunk by chunk. Remote-call failures never
	// surface as an error; they degrade into Outcome.Diagnostics and
	// original-text fallbacks. The returned error is non-nil only when ctx
	// is cancelled, which aborts between chunks.
	Rewrite(ctx context.Context, input string, tone Tone) (Outcome, error)
}

// Compile-time interface compliance check.
var _ Rewriter = (*GeminiRewriter)(nil)

// GeminiRewriter drives trim → chunk → per-chunk retried call → reassembly.
// Chunks are processed sequentially in document order; output and
// diagnostics ordering always follow input order.
type GeminiRewriter struct {
	gen           generator
	maxChunkChars int
	maxInputChars int
	retry         apierr.RetryConfig
	onProgress    func(part, total int)
}

// Option configures a GeminiRewriter.
type Option func(*GeminiRewriter)

// WithMaxChunkChars sets the maximum characters per chunk.
func WithMaxChunkChars(n int) Option {
	return func(r *GeminiRewriter) {
		if n > 0 {
			r.maxChunkChars = n
		}
	}
}

// WithMaxInputChars sets the total input cap applied before chunking.
func WithMaxInputChars(n int) Option {
	return func(r *GeminiRewriter) {
		if n > 0 {
			r.maxInputChars = n
		}
	}
}

// WithMaxAttempts sets the attempts per chunk, including the first.
func WithMaxAttempts(n int) Option {
	return func(r *GeminiRewriter) {
		if n >= 1 {
			r.retry.MaxAttempts = n
		}
	}
}

// WithBackoff sets the base and cap for the per-attempt backoff delay.
func WithBackoff(base, max time.Duration) Option {
	return func(r *GeminiRewriter) {
		if base > 0 {
			r.retry.BaseDelay = base
		}
		if max > 0 {
			r.retry.MaxDelay = max
		}
	}
}

// WithProgress sets a progress callback invoked before each chunk call.
func WithProgress(fn func(part, total int)) Option {
	return func(r *GeminiRewriter) {
		r.onProgress = fn
	}
}

// withGenerator sets a custom single-attempt generator (for testing).
func withGenerator(g generator) Option {
	return func(r *GeminiRewriter) {
		r.gen = g
	}
}

// NewGeminiRewriter creates a GeminiRewriter on top of an existing Client.
// The client is constructed once by the caller and reused across calls.
func NewGeminiRewriter(client *Client, opts ...Option) *GeminiRewriter {
	r := &GeminiRewriter{
		gen:           client,
		maxChunkChars: DefaultMaxChunkChars,
		maxInputChars: DefaultMaxInputChars,
		retry: apierr.RetryConfig{
			MaxAttempts: defaultMaxAttempts,
			BaseDelay:   defaultBackoffBase,
			MaxDelay:    defaultMaxBackoff,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite implements Rewriter.
func (r *GeminiRewriter) Rewrite(ctx context.Context, input string, tone Tone) (Outcome, error) {
	trimmed := text.Trim(input, r.maxInputChars)
	parts := text.Chunk(trimmed, r.maxChunkChars)

	outputs := make([]string, 0, len(parts))
	var diags []Diagnostic
	anySuccess := false

	for i, part := range parts {
		// Cancellation is honored between chunks; a finished chunk's
		// contribution is never discarded retroactively.
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		if r.onProgress != nil {
			r.onProgress(i+1, len(parts))
		}

		prompt := buildPrompt(tone, part)
		out, err := apierr.RetryWithBackoff(ctx, r.retry, func() (string, error) {
			return r.gen.generate(ctx, prompt)
		}, isRetryableFailure)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
			diags = append(diags, newDiagnostic(i, err))
			outputs = append(outputs, part)
			continue
		}

		outputs = append(outputs, strings.TrimSpace(out))
		anySuccess = true
	}

	return Outcome{
		Text:        strings.Join(outputs, text.Separator),
		AllFailed:   !anySuccess,
		Diagnostics: diags,
	}, nil
}

// newDiagnostic converts the final error of a chunk into its diagnostics entry.
func newDiagnostic(part int, err error) Diagnostic {
	var f *APIFailure
	if errors.As(err, &f) {
		return Diagnostic{
			Part:         part,
			Status:       f.Status,
			BodyPreview:  f.BodyPreview,
			Headers:      f.Headers,
			FallbackInfo: f.ClientDetail,
		}
	}
	return Diagnostic{Part: part, BodyPreview: preview(err.Error())}
}
