package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"echoverse/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	rewriter     *mockRewriterFactory
	synthesizer  *mockSynthesizerFactory

	mu        sync.Mutex
	playCalls [][]byte
}

func newTestMocks() *testMocks {
	return &testMocks{
		configLoader: &mockConfigLoader{},
		rewriter:     &mockRewriterFactory{},
		synthesizer:  &mockSynthesizerFactory{},
	}
}

func (m *testMocks) play(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, data)
	return nil
}

func (m *testMocks) PlayCalls() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([][]byte, len(m.playCalls))
	copy(result, m.playCalls)
	return result
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	stdin  io.Reader
	getenv func(string) string
	mocks  *testMocks
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

func withTestStdin(s string) testEnvOption {
	return func(o *testEnvOptions) { o.stdin = strings.NewReader(s) }
}

func withTestGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

func withTestMocks(m *testMocks) testEnvOption {
	return func(o *testEnvOptions) { o.mocks = m }
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env, its output buffers, and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *syncBuffer, *syncBuffer, *testMocks) {
	options := &testEnvOptions{
		stdin:  strings.NewReader(""),
		getenv: defaultTestGetenv,
		mocks:  newTestMocks(),
	}
	for _, opt := range opts {
		opt(options)
	}

	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	env := &Env{
		Stdin:              options.stdin,
		Stdout:             stdout,
		Stderr:             stderr,
		Getenv:             options.getenv,
		ConfigLoader:       options.mocks.configLoader,
		RewriterFactory:    options.mocks.rewriter,
		SynthesizerFactory: options.mocks.synthesizer,
		Play:               options.mocks.play,
	}

	return env, stdout, stderr, options.mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestGetenv provides an API key and nothing else.
func defaultTestGetenv(key string) string {
	if key == EnvAPIKey {
		return "test-gemini-key"
	}
	return ""
}

// createTestTextFile creates a temporary text file for testing.
// Returns the file path. The file is automatically cleaned up after the test.
func createTestTextFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "story.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test text file: %v", err)
	}
	return path
}

// configWithOutputDir returns a ConfigLoader whose config points at outputDir.
func configWithOutputDir(outputDir string) *mockConfigLoader {
	return &mockConfigLoader{
		LoadFunc: func() (config.Config, error) {
			return config.Config{OutputDir: outputDir}, nil
		},
	}
}
