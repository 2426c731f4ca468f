package ragdex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// OpenAIConfig holds OpenAI-compatible provider settings. EmbeddingModel
// and ChatModel may be empty; the affected tools then return a
// configuration error at call time.
type OpenAIConfig struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
	ChatModel           string
}

type clientConfig struct {
	addrs    []string
	password string

	openai   OpenAIConfig
	embedder Embedder

	chatTemperature float32
	chatMaxTokens   int

	readinessTimeout time.Duration
	logger           *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOpenAI configures the OpenAI-compatible embedding and chat providers.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = cfg
	})
}

// WithEmbedder sets a custom text embedding provider. Takes precedence
// over the OpenAI embedding configuration.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithChatGeneration overrides the answer temperature and output cap
// used by the rag_answer tool. Defaults: 0.7 and 1000.
func WithChatGeneration(temperature float32, maxTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatTemperature = temperature
		c.chatMaxTokens = maxTokens
	})
}

// WithReadinessTimeout bounds the initial Redis readiness check.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for client operations.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
