// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/docchat/internal/config"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the completions client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "completions server is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// CLIENT
// =============================================================================

// healthTimeout bounds the /v1/models check.
const healthTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to an OpenAI-compatible completions server.
// The Client is safe for concurrent use.
type Client struct {
	completionsURL string
	modelsURL      string
	model          string
	apiKey         string
	maxTokens      int
	temperature    float64

	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client from the llm config section. Zero values fall
// back to the built-in defaults.
func NewClient(cfg config.LLMConfig, opts ...Option) *Client {
	defaults := config.Default().LLM
	if cfg.URL == "" {
		cfg.URL = defaults.URL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = defaults.TimeoutSecs
	}

	c := &Client{
		completionsURL: cfg.URL,
		modelsURL:      ModelsURL(cfg.URL),
		model:          cfg.Model,
		apiKey:         cfg.APIKey,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelsURL derives the /models endpoint that sits next to a completions URL.
func ModelsURL(completionsURL string) string {
	u, err := url.Parse(completionsURL)
	if err != nil {
		return strings.TrimSuffix(completionsURL, "/completions") + "/models"
	}
	u.Path = path.Join(path.Dir(strings.TrimSuffix(u.Path, "/")), "models")
	u.RawQuery = ""
	return u.String()
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// do sends req, mapping transport failures onto the sentinel errors.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeNotRunning, Message: ErrNotRunning.Message, Cause: err}
	}
	return resp, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the server answers GET /v1/models with 200.
func (c *Client) CheckRunning(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, c.modelsURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeNotRunning,
			Message: "unexpected status from completions server: " + resp.Status,
		}
	}
	return nil
}

// ListModels returns the models the server has loaded.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.modelsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Data, nil
}

// =============================================================================
// COMPLETIONS
// =============================================================================

// Complete generates a completion for prompt and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (*CompletionResponse, error) {
	body, err := json.Marshal(CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.completionsURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error.Message}
		}
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "completion request failed: " + resp.Status,
		}
	}

	var result CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if len(result.Choices) == 0 {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "completion has no choices"}
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("completion_tokens", result.Usage.CompletionTokens).
		Dur("took", time.Since(start)).
		Msg("completion done")

	return &result, nil
}
