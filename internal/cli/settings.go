package cli

import (
	"strconv"
	"time"

	"echoverse/internal/rewrite"
)

// Environment variables consumed by the pipeline.
// Values are read through Env.Getenv so tests can inject them.
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvModel          = "GEMINI_MODEL"
	EnvTimeout        = "GEMINI_TIMEOUT"
	EnvTries          = "GEMINI_TRIES"
	EnvBackoff        = "GEMINI_BACKOFF"
	EnvThinkingBudget = "GEMINI_THINKING_BUDGET"
	EnvChunkMax       = "ECHOVERSE_CHUNK_MAX"
	EnvInputMax       = "ECHOVERSE_INPUT_MAX"
)

// Default settings applied when the environment leaves them unset.
const (
	defaultTimeout = 240 * time.Second
	defaultTries   = 3
	defaultBackoff = 2 * time.Second
)

// Settings is the resolved configuration surface of the rewrite stage.
type Settings struct {
	APIKey  string
	Model   string // empty means the client default
	Timeout time.Duration
	Tries   int
	Backoff time.Duration

	// ThinkingBudget is forwarded to the provider only when set.
	ThinkingBudget *int

	ChunkMax int
	InputMax int
}

// loadSettings resolves Settings from the environment. Malformed numeric
// values fall back to defaults rather than failing, matching how a missing
// variable behaves.
func loadSettings(getenv func(string) string) Settings {
	s := Settings{
		APIKey:   getenv(EnvAPIKey),
		Model:    getenv(EnvModel),
		Timeout:  defaultTimeout,
		Tries:    defaultTries,
		Backoff:  defaultBackoff,
		ChunkMax: rewrite.DefaultMaxChunkChars,
		InputMax: rewrite.DefaultMaxInputChars,
	}

	if n, ok := envInt(getenv(EnvTimeout)); ok && n > 0 {
		s.Timeout = time.Duration(n) * time.Second
	}
	if n, ok := envInt(getenv(EnvTries)); ok && n > 0 {
		s.Tries = n
	}
	if f, err := strconv.ParseFloat(getenv(EnvBackoff), 64); err == nil && f > 0 {
		s.Backoff = time.Duration(f * float64(time.Second))
	}
	if n, ok := envInt(getenv(EnvThinkingBudget)); ok {
		s.ThinkingBudget = &n
	}
	if n, ok := envInt(getenv(EnvChunkMax)); ok && n > 0 {
		s.ChunkMax = n
	}
	if n, ok := envInt(getenv(EnvInputMax)); ok && n > 0 {
		s.InputMax = n
	}

	return s
}

func envInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
