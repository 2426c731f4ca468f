package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// ChatClient is a chat-completion provider using the OpenAI-compatible API.
type ChatClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat-completion provider.
// Model may be empty; Complete then fails with domain.ErrMissingConfig,
// which lets callers treat an unconfigured chat deployment as a soft error.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Configured reports whether a chat model is set.
func (c *ChatClient) Configured() bool {
	return c.model != ""
}

// Complete implements domain.ChatCompleter. A single attempt, no retries.
func (c *ChatClient) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	if c.model == "" {
		return "", fmt.Errorf("%w: chat model is not set", domain.ErrMissingConfig)
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", parseAPIError(err, domain.ErrChatProviderError, "chat")
	}

	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}
