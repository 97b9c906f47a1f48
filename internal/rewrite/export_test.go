package rewrite

import "context"

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// Client option exports for dependency injection in tests.
var (
	WithChatCompleter = withChatCompleter
	WithHTTPClient    = withHTTPClient
)

// Function exports for unit testing internal logic.
var (
	IsRetryableFailure    = isRetryableFailure
	BuildPrompt           = buildPrompt
	ParseGenerateResponse = parseGenerateResponse
)

// Generate exposes the client's single-attempt call to black-box tests.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt)
}

// GeneratorFunc adapts a function to the internal single-attempt generator
// so tests can stub out the remote call entirely.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// WithGeneratorFunc injects a stub generator into a GeminiRewriter.
func WithGeneratorFunc(f GeneratorFunc) Option {
	return withGenerator(f)
}
