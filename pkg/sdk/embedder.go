package ragdex

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// domainEmbedder adapts an SDK Embedder to the internal provider interface.
type domainEmbedder struct {
	inner Embedder
}

func (d domainEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := d.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embedding,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}
