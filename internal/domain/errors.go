package domain

import "errors"

var (
	// ErrMissingConfig signals a required external-service setting that is unset.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat-completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrStore signals a vector index failure.
	ErrStore = errors.New("vector store error")
	// ErrUnknownTool signals a registry dispatch miss.
	ErrUnknownTool = errors.New("tool not found")
)
