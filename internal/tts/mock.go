package tts

import (
	"context"
	"sync"
)

// Compile-time interface compliance check.
var _ Synthesizer = (*MockSynthesizer)(nil)

// MockSynthesizer is a Synthesizer for tests and dry runs. It records the
// chunks it was asked to synthesize and returns scripted errors in order
// before succeeding with a deterministic payload.
type MockSynthesizer struct {
	mu    sync.Mutex
	calls []string

	// Errs are consumed one per call; calls beyond the script succeed.
	Errs []error

	// Audio overrides the returned payload. When nil, each call returns
	// the chunk's bytes so tests can assert ordering in the output.
	Audio []byte
}

// Synthesize implements Synthesizer.
func (m *MockSynthesizer) Synthesize(_ context.Context, chunk string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, chunk)
	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if m.Audio != nil {
		return m.Audio, nil
	}
	return []byte(chunk), nil
}

// Calls returns a copy of the chunks synthesized so far.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
