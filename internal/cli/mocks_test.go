package cli

import (
	"context"
	"sync"

	"echoverse/internal/config"
	"echoverse/internal/rewrite"
	"echoverse/internal/tts"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock RewriterFactory + Rewriter
// ---------------------------------------------------------------------------

type mockRewriterFactory struct {
	NewRewriterFunc func(s Settings, opts ...rewrite.Option) (rewrite.Rewriter, error)
	NewRewriterErr  error // Error to return from NewRewriter

	mu               sync.Mutex
	newRewriterCalls []Settings
	mockRewriter     *mockRewriter
}

func (m *mockRewriterFactory) NewRewriter(s Settings, opts ...rewrite.Option) (rewrite.Rewriter, error) {
	m.mu.Lock()
	m.newRewriterCalls = append(m.newRewriterCalls, s)
	m.mu.Unlock()

	if m.NewRewriterErr != nil {
		return nil, m.NewRewriterErr
	}
	if m.NewRewriterFunc != nil {
		return m.NewRewriterFunc(s, opts...)
	}
	if m.mockRewriter != nil {
		return m.mockRewriter, nil
	}
	return &mockRewriter{}, nil
}

func (m *mockRewriterFactory) NewRewriterCalls() []Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Settings, len(m.newRewriterCalls))
	copy(result, m.newRewriterCalls)
	return result
}

type mockRewriter struct {
	RewriteFunc func(ctx context.Context, input string, tone rewrite.Tone) (rewrite.Outcome, error)

	mu           sync.Mutex
	rewriteCalls []rewriteCall
}

type rewriteCall struct {
	Input string
	Tone  rewrite.Tone
}

func (m *mockRewriter) Rewrite(ctx context.Context, input string, tone rewrite.Tone) (rewrite.Outcome, error) {
	m.mu.Lock()
	m.rewriteCalls = append(m.rewriteCalls, rewriteCall{Input: input, Tone: tone})
	m.mu.Unlock()

	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, input, tone)
	}
	return rewrite.Outcome{Text: "rewritten text"}, nil
}

func (m *mockRewriter) RewriteCalls() []rewriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]rewriteCall, len(m.rewriteCalls))
	copy(result, m.rewriteCalls)
	return result
}

// ---------------------------------------------------------------------------
// Mock SynthesizerFactory
// ---------------------------------------------------------------------------

type mockSynthesizerFactory struct {
	NewSynthesizerFunc func(ctx context.Context, voice Voice) (tts.Synthesizer, error)
	NewSynthesizerErr  error // Error to return from NewSynthesizer

	mu                  sync.Mutex
	newSynthesizerCalls []Voice
	mockSynthesizer     *tts.MockSynthesizer
}

func (m *mockSynthesizerFactory) NewSynthesizer(ctx context.Context, voice Voice) (tts.Synthesizer, error) {
	m.mu.Lock()
	m.newSynthesizerCalls = append(m.newSynthesizerCalls, voice)
	m.mu.Unlock()

	if m.NewSynthesizerErr != nil {
		return nil, m.NewSynthesizerErr
	}
	if m.NewSynthesizerFunc != nil {
		return m.NewSynthesizerFunc(ctx, voice)
	}
	if m.mockSynthesizer != nil {
		return m.mockSynthesizer, nil
	}
	return &tts.MockSynthesizer{}, nil
}

func (m *mockSynthesizerFactory) NewSynthesizerCalls() []Voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Voice, len(m.newSynthesizerCalls))
	copy(result, m.newSynthesizerCalls)
	return result
}

// ---------------------------------------------------------------------------
// Compile-time interface verification
// ---------------------------------------------------------------------------

var (
	_ ConfigLoader       = (*mockConfigLoader)(nil)
	_ RewriterFactory    = (*mockRewriterFactory)(nil)
	_ rewrite.Rewriter   = (*mockRewriter)(nil)
	_ SynthesizerFactory = (*mockSynthesizerFactory)(nil)
)
