package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

const (
	// minScoreThreshold is the similarity cutoff below which retrieved
	// chunks are not trusted as answer context.
	minScoreThreshold = 0.5

	// noContextAnswer is the terminal, non-error reply when retrieval
	// produced nothing usable.
	noContextAnswer = "I don't have enough context to answer this question."

	ragSystemPrompt = `You are a helpful assistant answering questions based on provided context.
Answer the question using only the information in the context.
If the context doesn't contain enough information to answer, say so explicitly.
Keep your answer clear, concise, and well-organized.`
)

// Generation defaults for the answer completion.
const (
	defaultAnswerTemperature = 0.7
	defaultAnswerMaxTokens   = 1000
)

// RagAnswer retrieves similar documents, filters them by score, and
// generates a grounded answer with source attribution.
type RagAnswer struct {
	search      *VectorSearch
	chat        domain.ChatCompleter
	temperature float32
	maxTokens   int
}

// NewRagAnswer creates the rag_answer tool.
func NewRagAnswer(search *VectorSearch, chat domain.ChatCompleter) *RagAnswer {
	return &RagAnswer{
		search:      search,
		chat:        chat,
		temperature: defaultAnswerTemperature,
		maxTokens:   defaultAnswerMaxTokens,
	}
}

// WithGeneration overrides the answer temperature and output cap.
func (t *RagAnswer) WithGeneration(temperature float32, maxTokens int) *RagAnswer {
	if temperature > 0 {
		t.temperature = temperature
	}
	if maxTokens > 0 {
		t.maxTokens = maxTokens
	}
	return t
}

// RagOutput is the rag_answer success payload.
type RagOutput struct {
	Answer     string            `json:"answer"`
	Sources    []domain.Metadata `json:"sources"`
	ChunksUsed []SearchResult    `json:"chunks_used"`
}

// Definition implements Tool.
func (t *RagAnswer) Definition() Definition {
	return Definition{
		Name:        "rag_answer",
		Description: "Retrieve documents from the vector store and generate a grounded answer",
		InputSchema: objectSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Question or search query"},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of document chunks to retrieve",
				"default":     defaultTopK,
			},
		}, "query"),
		OutputSchema: objectSchema(map[string]any{
			"answer":      map[string]any{"type": "string"},
			"sources":     map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			"chunks_used": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
		}),
	}
}

// Invoke implements Tool.
func (t *RagAnswer) Invoke(ctx context.Context, payload json.RawMessage) Result {
	var in struct {
		Query string `json:"query"`
		TopK  any    `json:"top_k"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return Errf("invalid payload: %v", err)
	}

	query := strings.TrimSpace(in.Query)
	if query == "" {
		return Errf("query cannot be empty")
	}

	return t.answer(ctx, query, normalizeTopK(in.TopK))
}

func (t *RagAnswer) answer(ctx context.Context, query string, topK int) Result {
	searchOut, res := t.search.search(ctx, query, topK)
	if res.Failed() {
		return res
	}

	if len(searchOut.Results) == 0 {
		return OK(RagOutput{
			Answer:     noContextAnswer,
			Sources:    []domain.Metadata{},
			ChunksUsed: []SearchResult{},
		})
	}

	grounded := make([]SearchResult, 0, len(searchOut.Results))
	for _, r := range searchOut.Results {
		if r.Score >= minScoreThreshold {
			grounded = append(grounded, r)
		}
	}

	if len(grounded) == 0 {
		// Nothing passed the threshold: surface what was found for debugging,
		// but attribute no sources.
		return OK(RagOutput{
			Answer:     noContextAnswer,
			Sources:    []domain.Metadata{},
			ChunksUsed: searchOut.Results,
		})
	}

	contextBlock, sources := buildContext(grounded)

	userPrompt := fmt.Sprintf(
		"Context:\n%s\n\nQuestion: %s\n\nPlease provide a clear and concise answer based on the context above.",
		contextBlock, query,
	)

	answer, err := t.chat.Complete(ctx, domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: ragSystemPrompt},
			{Role: domain.RoleUser, Content: userPrompt},
		},
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMissingConfig) {
			return Errf("%v", err)
		}
		return Errf("chat completion failed: %v", err)
	}

	return OK(RagOutput{
		Answer:     answer,
		Sources:    sources,
		ChunksUsed: grounded,
	})
}

// buildContext assembles the numbered context block from chunks in rank
// order and collects unique, non-empty metadata objects as sources
// (order-preserving structural de-duplication).
func buildContext(chunks []SearchResult) (string, []domain.Metadata) {
	blocks := make([]string, 0, len(chunks))
	sources := make([]domain.Metadata, 0, len(chunks))

	for i, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("[Chunk %d] %s", i+1, chunk.Text))

		if len(chunk.Metadata) == 0 {
			continue
		}
		seen := false
		for _, s := range sources {
			if reflect.DeepEqual(s, chunk.Metadata) {
				seen = true
				break
			}
		}
		if !seen {
			sources = append(sources, chunk.Metadata)
		}
	}

	return strings.Join(blocks, "\n\n"), sources
}
