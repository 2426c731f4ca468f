package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

func TestUpsertDocument_HappyPath(t *testing.T) {
	writer := &mockWriter{}
	embed := NewEmbedText(&mockEmbedder{vec: []float32{0.1, 0.2}})
	tool := NewUpsertDocument(embed, writer)

	payload := json.RawMessage(`{"id":"doc1","text":"hello world","metadata":{"source":"wiki"}}`)
	res := tool.Invoke(context.Background(), payload)
	if res.Failed() {
		t.Fatalf("unexpected error: %s", res.Err)
	}

	out, ok := res.Data.(UpsertOutput)
	if !ok {
		t.Fatalf("unexpected payload type %T", res.Data)
	}
	if out.Status != "success" || out.ID != "doc1" || out.EmbeddingDim != 2 {
		t.Errorf("unexpected output: %+v", out)
	}

	if len(writer.docs) != 1 {
		t.Fatalf("expected 1 persisted document, got %d", len(writer.docs))
	}
	doc := writer.docs[0]
	if doc.ID != "doc1" || doc.Text != "hello world" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Metadata["source"] != "wiki" {
		t.Errorf("unexpected metadata: %v", doc.Metadata)
	}
}

func TestUpsertDocument_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"empty id", `{"id":"","text":"hello"}`, "id cannot be empty"},
		{"blank id", `{"id":"  ","text":"hello"}`, "id cannot be empty"},
		{"empty text", `{"id":"doc1","text":""}`, "text cannot be empty"},
		{"blank text", `{"id":"doc1","text":"   "}`, "text cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockWriter{}
			embed := NewEmbedText(&mockEmbedder{vec: []float32{0.1}})
			tool := NewUpsertDocument(embed, writer)

			res := tool.Invoke(context.Background(), json.RawMessage(tt.payload))
			if !res.Failed() {
				t.Fatal("expected structured error")
			}
			if res.Err != tt.wantErr {
				t.Errorf("got %q, want %q", res.Err, tt.wantErr)
			}
			if len(writer.docs) != 0 {
				t.Error("nothing should be persisted on validation failure")
			}
		})
	}
}

func TestUpsertDocument_EmbedErrorPassesThroughVerbatim(t *testing.T) {
	writer := &mockWriter{}
	embed := NewEmbedText(&mockEmbedder{err: errors.New("provider timeout")})
	tool := NewUpsertDocument(embed, writer)

	res := tool.Invoke(context.Background(), json.RawMessage(`{"id":"doc1","text":"hello"}`))
	if !res.Failed() {
		t.Fatal("expected structured error")
	}
	if res.Err != "provider timeout" {
		t.Errorf("embed error must not be re-wrapped, got %q", res.Err)
	}
	if len(writer.docs) != 0 {
		t.Error("nothing should be persisted when embedding fails")
	}
}

func TestUpsertDocument_StoreErrorCaught(t *testing.T) {
	writer := &mockWriter{err: domain.ErrStore}
	embed := NewEmbedText(&mockEmbedder{vec: []float32{0.1}})
	tool := NewUpsertDocument(embed, writer)

	res := tool.Invoke(context.Background(), json.RawMessage(`{"id":"doc1","text":"hello"}`))
	if !res.Failed() {
		t.Fatal("expected structured error, not a propagated failure")
	}
	if res.Err != domain.ErrStore.Error() {
		t.Errorf("unexpected message: %q", res.Err)
	}
}

func TestUpsertDocument_MissingMetadataDefaultsToEmpty(t *testing.T) {
	writer := &mockWriter{}
	embed := NewEmbedText(&mockEmbedder{vec: []float32{0.1}})
	tool := NewUpsertDocument(embed, writer)

	res := tool.Invoke(context.Background(), json.RawMessage(`{"id":"doc1","text":"hello"}`))
	if res.Failed() {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if writer.docs[0].Metadata == nil {
		t.Error("expected empty metadata object, got nil")
	}
	if len(writer.docs[0].Metadata) != 0 {
		t.Errorf("expected empty metadata, got %v", writer.docs[0].Metadata)
	}
}
