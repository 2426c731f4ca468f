package tools

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// --- Shared mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	called int
	last   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.called++
	m.last = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: len(text)}, nil
}

type mockWriter struct {
	err  error
	docs []domain.Document
}

func (m *mockWriter) Upsert(_ context.Context, docs []domain.Document) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.docs = append(m.docs, docs...)
	return len(docs), nil
}

type mockSearcher struct {
	hits     []domain.Hit
	err      error
	lastTopK int
	lastVec  []float32
}

func (m *mockSearcher) Query(_ context.Context, vector []float32, topK int) ([]domain.Hit, error) {
	m.lastVec = vector
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

type mockChat struct {
	answer string
	err    error
	called int
	last   domain.ChatRequest
}

func (m *mockChat) Complete(_ context.Context, req domain.ChatRequest) (string, error) {
	m.called++
	m.last = req
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}
