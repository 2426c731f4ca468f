package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// DocumentWriter persists embedded documents (consumer interface).
type DocumentWriter interface {
	Upsert(ctx context.Context, docs []domain.Document) (int, error)
}

// UpsertDocument embeds a document and persists it to the vector store.
type UpsertDocument struct {
	embed *EmbedText
	store DocumentWriter
}

// NewUpsertDocument creates the upsert_document tool.
func NewUpsertDocument(embed *EmbedText, store DocumentWriter) *UpsertDocument {
	return &UpsertDocument{embed: embed, store: store}
}

// UpsertOutput is the upsert_document success payload.
type UpsertOutput struct {
	Status       string `json:"status"`
	ID           string `json:"id"`
	EmbeddingDim int    `json:"embedding_dim"`
}

// Definition implements Tool.
func (t *UpsertDocument) Definition() Definition {
	return Definition{
		Name:        "upsert_document",
		Description: "Upsert a document to the vector store with embedding",
		InputSchema: objectSchema(map[string]any{
			"id":   map[string]any{"type": "string", "description": "Unique document ID"},
			"text": map[string]any{"type": "string", "description": "Document text to embed and store"},
			"metadata": map[string]any{
				"type":                 "object",
				"description":          "Optional metadata (source, author, etc)",
				"additionalProperties": true,
			},
		}, "id", "text"),
		OutputSchema: objectSchema(map[string]any{
			"status":        map[string]any{"type": "string"},
			"id":            map[string]any{"type": "string"},
			"embedding_dim": map[string]any{"type": "integer"},
		}),
	}
}

// Invoke implements Tool. Embedding errors propagate verbatim; store
// failures are caught and returned as structured errors.
func (t *UpsertDocument) Invoke(ctx context.Context, payload json.RawMessage) Result {
	var in struct {
		ID       string          `json:"id"`
		Text     string          `json:"text"`
		Metadata domain.Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return Errf("invalid payload: %v", err)
	}

	id := strings.TrimSpace(in.ID)
	text := strings.TrimSpace(in.Text)

	if id == "" {
		return Errf("id cannot be empty")
	}
	if text == "" {
		return Errf("text cannot be empty")
	}

	embedOut, res := t.embed.embed(ctx, text)
	if res.Failed() {
		return res
	}

	meta := in.Metadata
	if len(meta) == 0 {
		meta = domain.Metadata{}
	}

	doc := domain.Document{
		ID:        id,
		Text:      text,
		Metadata:  meta,
		Embedding: embedOut.Embedding,
	}
	if _, err := t.store.Upsert(ctx, []domain.Document{doc}); err != nil {
		return Errf("%v", err)
	}

	return OK(UpsertOutput{Status: "success", ID: id, EmbeddingDim: embedOut.Dim})
}
