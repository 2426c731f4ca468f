package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Searcher runs nearest-neighbor queries (consumer interface).
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Hit, error)
}

// VectorSearch embeds a query and finds similar documents.
type VectorSearch struct {
	embed *EmbedText
	store Searcher
}

// NewVectorSearch creates the vector_search tool.
func NewVectorSearch(embed *EmbedText, store Searcher) *VectorSearch {
	return &VectorSearch{embed: embed, store: store}
}

// SearchResult is a single scored match.
type SearchResult struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Score    float64         `json:"score"`
	Metadata domain.Metadata `json:"metadata"`
}

// SearchOutput is the vector_search success payload.
type SearchOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// Definition implements Tool.
func (t *VectorSearch) Definition() Definition {
	return Definition{
		Name:        "vector_search",
		Description: "Search the vector store with a text query",
		InputSchema: objectSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query text"},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of results to return",
				"default":     defaultTopK,
			},
		}, "query"),
		OutputSchema: objectSchema(map[string]any{
			"results": map[string]any{
				"type": "array",
				"items": objectSchema(map[string]any{
					"id":       map[string]any{"type": "string"},
					"text":     map[string]any{"type": "string"},
					"score":    map[string]any{"type": "number"},
					"metadata": map[string]any{"type": "object"},
				}),
			},
			"count": map[string]any{"type": "integer"},
		}),
	}
}

// Invoke implements Tool.
func (t *VectorSearch) Invoke(ctx context.Context, payload json.RawMessage) Result {
	var in struct {
		Query string `json:"query"`
		TopK  any    `json:"top_k"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return Errf("invalid payload: %v", err)
	}

	_, res := t.search(ctx, in.Query, normalizeTopK(in.TopK))
	return res
}

// search is the typed entry point shared with rag_answer. Scores are
// derived from cosine distance as round(1 - distance, 4); the store's
// most-similar-first ordering is preserved.
func (t *VectorSearch) search(ctx context.Context, query string, topK int) (SearchOutput, Result) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchOutput{}, Errf("query cannot be empty")
	}

	embedOut, res := t.embed.embed(ctx, query)
	if res.Failed() {
		return SearchOutput{}, res
	}

	hits, err := t.store.Query(ctx, embedOut.Embedding, topK)
	if err != nil {
		return SearchOutput{}, Errf("%v", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		meta := h.Metadata
		if meta == nil {
			meta = domain.Metadata{}
		}
		results = append(results, SearchResult{
			ID:       h.ID,
			Text:     h.Text,
			Score:    roundScore(1 - h.Distance),
			Metadata: meta,
		})
	}

	out := SearchOutput{Results: results, Count: len(results)}
	return out, OK(out)
}
