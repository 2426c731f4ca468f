package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// EmbedText generates an embedding vector for input text.
type EmbedText struct {
	embedder domain.Embedder
}

// NewEmbedText creates the embed_text tool.
func NewEmbedText(embedder domain.Embedder) *EmbedText {
	return &EmbedText{embedder: embedder}
}

// EmbedOutput is the embed_text success payload.
type EmbedOutput struct {
	Embedding []float32 `json:"embedding"`
	Dim       int       `json:"dim"`
}

// Definition implements Tool.
func (t *EmbedText) Definition() Definition {
	return Definition{
		Name:        "embed_text",
		Description: "Generate embedding vector for input text",
		InputSchema: objectSchema(map[string]any{
			"text": map[string]any{"type": "string"},
		}, "text"),
		OutputSchema: objectSchema(map[string]any{
			"embedding": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
			"dim":       map[string]any{"type": "integer"},
		}),
	}
}

// Invoke implements Tool.
func (t *EmbedText) Invoke(ctx context.Context, payload json.RawMessage) Result {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return Errf("invalid payload: %v", err)
	}

	_, res := t.embed(ctx, in.Text)
	return res
}

// embed is the typed entry point shared with dependent tools. The returned
// Result carries the error verbatim on failure so callers can pass it
// through unchanged.
func (t *EmbedText) embed(ctx context.Context, text string) (EmbedOutput, Result) {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmbedOutput{}, Errf("text cannot be empty")
	}

	er, err := t.embedder.Embed(ctx, text)
	if err != nil {
		return EmbedOutput{}, Errf("%v", err)
	}

	out := EmbedOutput{Embedding: er.Embedding, Dim: len(er.Embedding)}
	return out, OK(out)
}
