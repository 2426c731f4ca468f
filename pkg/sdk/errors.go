package ragdex

import "github.com/kailas-cloud/ragdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnknownTool            = domain.ErrUnknownTool
	ErrMissingConfig          = domain.ErrMissingConfig
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrChatProviderError      = domain.ErrChatProviderError
	ErrStore                  = domain.ErrStore
)
