// Package llm wraps the Groq chat-completion API. Groq speaks the OpenAI
// wire protocol, so the client is the OpenAI SDK pointed at a different
// base URL.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the default Groq model for chat completions.
	DefaultModel = "llama-3.3-70b-versatile"
)

// Options bounds a single generation call.
type Options struct {
	MaxTokens   int     // Maximum tokens to generate; 0 means the client default
	Temperature float64 // Sampling temperature; kept low for deterministic output
}

// Completer is the single-call surface consumers depend on, so tests can
// substitute a stub for the real gateway.
type Completer interface {
	ChatCompletion(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Client is a thin Groq gateway client.
type Client struct {
	client    openai.Client
	model     string
	maxTokens int
}

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// NewClient creates a Groq client. An empty API key is allowed: every call
// will fail at the gateway and consumers degrade to their fallback
// responses, which keeps a missing key from crashing the process.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// ChatCompletion issues one chat-completion request and returns the reply
// text of the first choice.
func (c *Client) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(opts.Temperature),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// StripCodeFences removes a surrounding markdown code fence from a model
// reply. Models frequently wrap JSON in ```json blocks despite instructions
// not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], "{[") {
		// Drop a language hint like "json" on the fence line.
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
