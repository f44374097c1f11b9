// Package assistant forwards free-form prompts to an OpenAI-compatible chat
// completion API (DeepSeek by default) for academic and career guidance.
//
// The client is optional: New returns nil when no API key is configured and
// every method on a nil *Client reports ErrAssistantDisabled.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/garyellow/programme-matcher/internal/config"
	domerrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/metrics"
)

// SystemPrompt is sent ahead of every user prompt.
const SystemPrompt = "You are a helpful AI assistant for academic and career guidance."

// Completion defaults and bounds.
const (
	DefaultMaxTokens   int64   = 1000
	DefaultTemperature float64 = 0.7
	DefaultTopP        float64 = 0.95

	MaxPromptRunes = 8000
)

// Options tune a single completion. Zero values select the defaults.
type Options struct {
	MaxTokens   int64
	Temperature float64
	TopP        float64
}

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.TopP <= 0 {
		o.TopP = DefaultTopP
	}
	return o
}

// Result is the assistant's reply with token accounting.
type Result struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
	TotalTokens      int64  `json:"totalTokens"`
}

// Client calls the chat completion endpoint.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	metrics *metrics.Metrics
}

// New creates a client from configuration. Returns nil when cfg.APIKey is empty.
// Extra request options are appended after the base URL and key.
func New(cfg config.AssistantConfig, m *metrics.Metrics, opts ...option.RequestOption) *Client {
	if cfg.APIKey == "" {
		return nil
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client:  openai.NewClient(reqOpts...),
		model:   cfg.Model,
		timeout: config.AssistantCall,
		metrics: m,
	}
}

// Enabled reports whether the client can serve completions.
func (c *Client) Enabled() bool {
	return c != nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Complete sends prompt unmodified as the user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (*Result, error) {
	if c == nil {
		return nil, domerrors.ErrAssistantDisabled
	}
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(opts.MaxTokens),
		Temperature: openai.Float(opts.Temperature),
		TopP:        openai.Float(opts.TopP),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start).Seconds()
	if err != nil {
		status, wrapped := classify(err)
		c.metrics.RecordAssistantCall(status, duration, 0)
		slog.WarnContext(ctx, "assistant completion failed",
			"model", c.model,
			"status", status,
			"duration_ms", int64(duration*1000),
			"error", err)
		return nil, wrapped
	}

	if len(resp.Choices) == 0 {
		c.metrics.RecordAssistantCall("empty", duration, resp.Usage.TotalTokens)
		return nil, errors.New("assistant: provider returned no choices")
	}

	result := &Result{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if result.Model == "" {
		result.Model = c.model
	}

	c.metrics.RecordAssistantCall("success", duration, result.TotalTokens)
	slog.DebugContext(ctx, "assistant completion",
		"model", result.Model,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"duration_ms", int64(duration*1000))

	return result, nil
}

func validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return domerrors.NewValidationError("prompt", "must not be empty")
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptRunes {
		return domerrors.NewValidationError("prompt", fmt.Sprintf("must be at most %d characters, got %d", MaxPromptRunes, n))
	}
	return nil
}

// classify maps a provider error onto the domain sentinels and a metrics status label.
func classify(err error) (string, error) {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout", fmt.Errorf("assistant: %w: %w", domerrors.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled", err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return "rate_limited", fmt.Errorf("assistant: %w: %w", domerrors.ErrRateLimitExceeded, err)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return "auth", fmt.Errorf("assistant: provider rejected credentials: %w", err)
		case apiErr.StatusCode >= 500:
			return "server_error", fmt.Errorf("assistant: provider unavailable: %w", err)
		}
		return "client_error", fmt.Errorf("assistant: provider error: %w", err)
	}
	return "error", fmt.Errorf("assistant: %w", err)
}
