package cli

import (
	"context"
	"io"
	"os"

	"echoverse/internal/config"
	"echoverse/internal/player"
	"echoverse/internal/rewrite"
	"echoverse/internal/tts"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	RewriterFactory    RewriterFactory
	SynthesizerFactory SynthesizerFactory

	// Play plays MP3 bytes through the speaker.
	Play func(ctx context.Context, data []byte) error
}

// ConfigLoader loads persisted user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// RewriterFactory creates rewriters for the text-rewrite stage.
type RewriterFactory interface {
	// NewRewriter builds a Rewriter from the resolved settings.
	// Extra options (progress callbacks) are applied last.
	NewRewriter(s Settings, opts ...rewrite.Option) (rewrite.Rewriter, error)
}

// SynthesizerFactory creates speech synthesizers.
type SynthesizerFactory interface {
	NewSynthesizer(ctx context.Context, voice Voice) (tts.Synthesizer, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) { e.Stdin = r }
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithRewriterFactory sets the rewriter factory.
func WithRewriterFactory(f RewriterFactory) EnvOption {
	return func(e *Env) { e.RewriterFactory = f }
}

// WithSynthesizerFactory sets the synthesizer factory.
func WithSynthesizerFactory(f SynthesizerFactory) EnvOption {
	return func(e *Env) { e.SynthesizerFactory = f }
}

// WithPlay sets the audio playback function.
func WithPlay(fn func(ctx context.Context, data []byte) error) EnvOption {
	return func(e *Env) { e.Play = fn }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:              os.Stdin,
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		ConfigLoader:       &defaultConfigLoader{},
		RewriterFactory:    &defaultRewriterFactory{},
		SynthesizerFactory: &defaultSynthesizerFactory{},
		Play:               player.Play,
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultRewriterFactory implements RewriterFactory using the Gemini client.
type defaultRewriterFactory struct{}

func (defaultRewriterFactory) NewRewriter(s Settings, opts ...rewrite.Option) (rewrite.Rewriter, error) {
	clientOpts := []rewrite.ClientOption{
		rewrite.WithModel(s.Model),
		rewrite.WithTimeout(s.Timeout),
	}
	if s.ThinkingBudget != nil {
		clientOpts = append(clientOpts, rewrite.WithThinkingBudget(*s.ThinkingBudget))
	}

	client, err := rewrite.NewClient(s.APIKey, clientOpts...)
	if err != nil {
		return nil, err
	}

	rewriterOpts := append([]rewrite.Option{
		rewrite.WithMaxAttempts(s.Tries),
		rewrite.WithBackoff(s.Backoff, 0),
		rewrite.WithMaxChunkChars(s.ChunkMax),
		rewrite.WithMaxInputChars(s.InputMax),
	}, opts...)

	return rewrite.NewGeminiRewriter(client, rewriterOpts...), nil
}

// defaultSynthesizerFactory implements SynthesizerFactory using Google TTS.
type defaultSynthesizerFactory struct{}

func (defaultSynthesizerFactory) NewSynthesizer(ctx context.Context, voice Voice) (tts.Synthesizer, error) {
	v := voice.OrDefault()
	return tts.NewGoogleSynthesizer(ctx, tts.WithVoice(v.TTSName(), v.LanguageCode()))
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ RewriterFactory    = (*defaultRewriterFactory)(nil)
	_ SynthesizerFactory = (*defaultSynthesizerFactory)(nil)
)
