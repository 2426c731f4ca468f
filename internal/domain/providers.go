package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatRequest parameterizes a single chat-completion call.
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
}

// ChatCompleter generates text from an ordered message sequence.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
