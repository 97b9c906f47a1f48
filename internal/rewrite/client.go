package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Gemini API configuration.
const (
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// defaultRESTBase is the Gemini REST API base URL.
	defaultRESTBase = "https://generativelanguage.googleapis.com/v1beta"

	// defaultHTTPTimeout bounds a single generation attempt.
	defaultHTTPTimeout = 240 * time.Second

	// Response size limit to prevent OOM from malformed responses (10MB).
	maxResponseSize = 10 * 1024 * 1024
)

// chatCompleter is an internal interface for the native client path.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// generator performs exactly one logical generation attempt.
// GeminiRewriter depends on this, not on Client, so tests can stub it.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// Compile-time interface compliance checks.
var (
	_ generator     = (*Client)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// Client performs single generation attempts against Gemini over two
// transports: the native client library speaking Gemini's OpenAI-compatible
// chat completions endpoint, and a raw HTTP POST to the generateContent REST
// endpoint. The native path is preferred; the REST path runs when the native
// client is not configured or its attempt errors. Both normalize to a plain
// text result or an *APIFailure.
//
// A Client is constructed once at startup and reused across calls; it holds
// no mutable per-call state.
type Client struct {
	chat       chatCompleter
	httpClient httpDoer
	apiKey     string
	restBase   string
	model      string

	// thinkingBudget is forwarded opaquely to the provider when set.
	thinkingBudget *int

	timeout  time.Duration
	restOnly bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel sets the generation model identifier.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the per-attempt network timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithThinkingBudget forwards a thinking budget to the provider.
// Zero disables thinking; unset leaves the provider default.
func WithThinkingBudget(n int) ClientOption {
	return func(c *Client) {
		c.thinkingBudget = &n
	}
}

// WithRESTBase overrides the Gemini REST base URL.
func WithRESTBase(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.restBase = u
		}
	}
}

// WithRESTOnly disables the native client path entirely.
func WithRESTOnly() ClientOption {
	return func(c *Client) {
		c.restOnly = true
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) ClientOption {
	return func(c *Client) {
		c.chat = cc
	}
}

// withHTTPClient sets a custom HTTP client (for testing).
func withHTTPClient(hc httpDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the given API key.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &Client{
		apiKey:   apiKey,
		restBase: defaultRESTBase,
		model:    DefaultModel,
		timeout:  defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Transports are created after options so the timeout and base URL are final.
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.chat == nil && !c.restOnly {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = c.restBase + "/openai"
		cfg.HTTPClient = &http.Client{Timeout: c.timeout}
		c.chat = openai.NewClientWithConfig(cfg)
	}
	return c, nil
}

// generate performs one generation attempt: native path first, REST fallback
// when the native path is unavailable or errors. No retries happen here.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var clientDetail string

	if c.chat != nil && !c.restOnly {
		out, err := c.generateNative(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		clientDetail = err.Error()
	}

	return c.generateREST(ctx, prompt, clientDetail)
}

// generateNative calls the OpenAI-compatible chat completions endpoint.
func (c *Client) generateNative(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.chat.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// geminiRequest is the generateContent REST payload.
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ThinkingConfig *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// generateREST calls the generateContent REST endpoint directly.
// clientDetail carries the native-path error text into any resulting failure.
func (c *Client) generateREST(ctx context.Context, prompt, clientDetail string) (_ string, err error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if c.thinkingBudget != nil {
		payload.GenerationConfig = &geminiGenConfig{
			ThinkingConfig: &geminiThinkingConfig{ThinkingBudget: *c.thinkingBudget},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.restBase, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}
		return "", &APIFailure{
			BodyPreview:  preview("exception: " + err.Error()),
			ClientDetail: clientDetail,
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &APIFailure{
			Status:       resp.StatusCode,
			BodyPreview:  preview("exception: " + err.Error()),
			Headers:      flattenHeaders(resp.Header),
			ClientDetail: clientDetail,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIFailure{
			Status:       resp.StatusCode,
			BodyPreview:  preview(string(respBody)),
			Headers:      flattenHeaders(resp.Header),
			ClientDetail: clientDetail,
		}
	}

	return parseGenerateResponse(respBody), nil
}

// flattenHeaders keeps the first value of each response header.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

// parseGenerateResponse unwraps a successful payload into plain text.
// Known shapes: a JSON string, the first element of a list of records, an
// object with a generated_text/text/output field, and the Gemini
// candidates/content/parts tree. Anything else degrades to the raw body.
func parseGenerateResponse(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	if s, ok := unwrapPayload(v); ok {
		return s
	}
	return string(body)
}

func unwrapPayload(v any) (string, bool) {
	switch p := v.(type) {
	case string:
		return p, true

	case []any:
		if len(p) > 0 {
			return unwrapPayload(p[0])
		}

	case map[string]any:
		if s, ok := unwrapCandidates(p); ok {
			return s, true
		}
		for _, key := range []string{"generated_text", "text", "output"} {
			if s, ok := p[key].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// unwrapCandidates walks the candidates[0].content.parts[0] tree.
func unwrapCandidates(m map[string]any) (string, bool) {
	cands, ok := m["candidates"].([]any)
	if !ok || len(cands) == 0 {
		return "", false
	}
	first, ok := cands[0].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := first["content"].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", false
	}
	switch p0 := parts[0].(type) {
	case string:
		return p0, true
	case map[string]any:
		if s, ok := p0["text"].(string); ok {
			return s, true
		}
	}
	return "", false
}
