// Package tts converts narration text into MP3 audio by chunking the text
// and calling a remote text-to-speech provider per chunk. Unlike the rewrite
// stage there is no graceful degradation here: a chunk that cannot be
// synthesized after retries fails the whole synthesis.
package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"echoverse/internal/apierr"
	"echoverse/internal/text"
)

// Synthesizer converts one text chunk into MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, chunk string) ([]byte, error)
}

// Parallelism configuration.
const (
	// MaxRecommendedParallel is the recommended upper limit for concurrent
	// synthesis requests. Higher values tend to trigger rate limiting.
	MaxRecommendedParallel = 4
)

// Default configuration values.
const (
	// DefaultMaxChunkChars keeps chunks under provider request limits.
	DefaultMaxChunkChars = 3000

	defaultMaxAttempts = 2
	defaultBackoffBase = 800 * time.Millisecond
	defaultMaxBackoff  = 10 * time.Second
)

// config holds SynthesizeAll parameters.
type config struct {
	maxChunkChars int
	maxParallel   int
	retry         apierr.RetryConfig
	onProgress    func(part, total int)
}

// Option configures SynthesizeAll.
type Option func(*config)

// WithMaxChunkChars sets the maximum characters per synthesis chunk.
func WithMaxChunkChars(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxChunkChars = n
		}
	}
}

// WithParallel sets the number of concurrent synthesis requests.
// Values are clamped to [1, MaxRecommendedParallel].
func WithParallel(n int) Option {
	return func(c *config) {
		switch {
		case n < 1:
			c.maxParallel = 1
		case n > MaxRecommendedParallel:
			c.maxParallel = MaxRecommendedParallel
		default:
			c.maxParallel = n
		}
	}
}

// WithMaxAttempts sets the attempts per chunk, including the first.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.retry.MaxAttempts = n
		}
	}
}

// WithBackoff sets the base and cap for the per-attempt backoff delay.
func WithBackoff(base, max time.Duration) Option {
	return func(c *config) {
		if base > 0 {
			c.retry.BaseDelay = base
		}
		if max > 0 {
			c.retry.MaxDelay = max
		}
	}
}

// WithProgress sets a progress callback invoked as each chunk starts.
func WithProgress(fn func(part, total int)) Option {
	return func(c *config) {
		c.onProgress = fn
	}
}

// SynthesizeAll synthesizes input into a single MP3 byte stream.
//
// The text is chunked, each chunk is synthesized with retries, and the
// resulting MP3 streams are concatenated in chunk order. Chunks may run
// concurrently up to the configured parallelism; output order is always
// input order. MP3 frame streams with identical encoding parameters
// concatenate cleanly, which holds for a single provider voice.
func SynthesizeAll(ctx context.Context, s Synthesizer, input string, opts ...Option) ([]byte, error) {
	cfg := config{
		maxChunkChars: DefaultMaxChunkChars,
		maxParallel:   1,
		retry: apierr.RetryConfig{
			MaxAttempts: defaultMaxAttempts,
			BaseDelay:   defaultBackoffBase,
			MaxDelay:    defaultMaxBackoff,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmptyText
	}
	chunks := text.Chunk(trimmed, cfg.maxChunkChars)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}

	results := make([][]byte, len(chunks))
	sem := make(chan struct{}, cfg.maxParallel)

	g, ctx := errgroup.WithContext(ctx)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			if cfg.onProgress != nil {
				cfg.onProgress(i+1, len(chunks))
			}

			audio, err := apierr.RetryWithBackoff(ctx, cfg.retry, func() ([]byte, error) {
				return s.Synthesize(ctx, chunk)
			}, isRetryableSynthesisError)
			if err != nil {
				return fmt.Errorf("chunk %d: %v: %w", i, err, ErrSynthesis)
			}
			results[i] = audio
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := bytes.Join(results, nil)
	if len(combined) == 0 {
		return nil, ErrNoAudio
	}
	return combined, nil
}

// isRetryableSynthesisError treats every synthesis failure as transient
// except cancellation; the provider gives no structured status to go on.
func isRetryableSynthesisError(err error) bool {
	return !errors.Is(err, context.Canceled)
}
