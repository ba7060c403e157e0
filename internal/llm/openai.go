package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/pizzabot/pizzabot/internal/observability"
)

type OpenAIConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
	Logger            *slog.Logger
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint, Groq
// included.
type OpenAIClient struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: float32(cfg.Temperature),
		timeout:     timeout,
		limiter:     newLimiter(cfg.RequestsPerMinute, cfg.Burst),
		logger:      logger,
	}, nil
}

func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt Prompt) (text string, err error) {
	startedAt := time.Now()
	defer func() {
		observability.ObserveLLMCall(prompt.Purpose, err, time.Since(startedAt))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for llm rate limit: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	}
	resp, err := c.api.CreateChatCompletion(callCtx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "llm request failed",
			slog.String("purpose", prompt.Purpose),
			slog.String("model", c.model),
			slog.Int64("duration_ms", time.Since(startedAt).Milliseconds()),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	c.logger.DebugContext(ctx, "llm request completed",
		slog.String("purpose", prompt.Purpose),
		slog.String("model", c.model),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Int64("duration_ms", time.Since(startedAt).Milliseconds()),
	)
	return content, nil
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}
