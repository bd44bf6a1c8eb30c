package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// Provider represents the LLM provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none"
)

// Completer is the subset of Client used by callers, so tests can supply
// scripted responses.
type Completer interface {
	IsEnabled() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Settings selects a provider and its credentials
type Settings struct {
	Provider    string
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string

	// Requests per minute across all calls from this process; 0 disables throttling
	RequestsPerMinute int
}

// Client provides a multi-provider LLM interface (OpenAI or Gemini).
// A client without a usable key is disabled rather than failing startup.
type Client struct {
	provider     Provider
	openaiClient *openai.Client
	geminiClient *GeminiClient
	limiter      *RateLimiter
	logger       *slog.Logger
	enabled      bool
	model        string
}

// NewClient creates an LLM client for the configured provider
func NewClient(ctx context.Context, s Settings) (*Client, error) {
	logger := slog.Default().With("component", "llm")

	switch Provider(s.Provider) {
	case ProviderGemini:
		return newGeminiClient(ctx, s, logger)
	case ProviderOpenAI, "":
		return newOpenAIClient(s, logger), nil
	case ProviderNone:
		logger.Info("llm provider disabled")
		return disabled(logger), nil
	default:
		logger.Warn("unknown provider, llm disabled", "provider", s.Provider)
		return disabled(logger), nil
	}
}

func disabled(logger *slog.Logger) *Client {
	return &Client{provider: ProviderNone, logger: logger}
}

// newGeminiClient initializes a Gemini provider client
func newGeminiClient(ctx context.Context, s Settings, logger *slog.Logger) (*Client, error) {
	if s.GeminiKey == "" {
		logger.Warn("gemini provider selected but no GEMINI_API_KEY configured")
		return disabled(logger), nil
	}

	model := s.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}

	geminiClient, err := NewGeminiClient(ctx, s.GeminiKey, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("gemini client initialized", "model", model)
	return &Client{
		provider:     ProviderGemini,
		geminiClient: geminiClient,
		limiter:      NewRateLimiter(s.RequestsPerMinute),
		logger:       logger,
		enabled:      true,
		model:        model,
	}, nil
}

// newOpenAIClient initializes an OpenAI provider client
func newOpenAIClient(s Settings, logger *slog.Logger) *Client {
	if s.OpenAIKey == "" {
		logger.Warn("openai provider selected but no OPENAI_API_KEY configured")
		return disabled(logger)
	}

	model := s.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}

	logger.Info("openai client initialized", "model", model)
	return &Client{
		provider:     ProviderOpenAI,
		openaiClient: openai.NewClient(s.OpenAIKey),
		limiter:      NewRateLimiter(s.RequestsPerMinute),
		logger:       logger,
		enabled:      true,
		model:        model,
	}
}

// IsEnabled returns true if an LLM client is configured and ready
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// GetProvider returns the active LLM provider
func (c *Client) GetProvider() Provider {
	return c.provider
}

// Complete sends a prompt to the LLM and returns the text response
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, false)
}

// CompleteJSON sends a prompt and asks the provider for a JSON object response
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, true)
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm client not enabled (check LLM_PROVIDER and API key)")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit wait: %w", err)
	}

	switch c.provider {
	case ProviderGemini:
		if jsonMode {
			return c.geminiClient.CompleteJSON(ctx, systemPrompt, userPrompt)
		}
		return c.geminiClient.Complete(ctx, systemPrompt, userPrompt)
	case ProviderOpenAI:
		return c.completeOpenAI(ctx, systemPrompt, userPrompt, jsonMode)
	default:
		return "", fmt.Errorf("no provider configured")
	}
}

// completeOpenAI handles OpenAI chat completion
func (c *Client) completeOpenAI(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	response := resp.Choices[0].Message.Content
	c.logger.Debug("openai completion",
		"model", c.model,
		"json", jsonMode,
		"prompt_length", len(userPrompt),
		"response_length", len(response),
		"tokens_used", resp.Usage.TotalTokens,
	)

	return response, nil
}
