package vector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	indexExists   bool
	existsErr     error
	createErr     error
	hsetErr       error
	searchResult  *db.SearchResult
	searchErr     error
	createdDef    *db.IndexDefinition
	createCalls   int
	upsertedItems []db.HashSetItem
	lastQuery     *db.KNNQuery
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	m.upsertedItems = append(m.upsertedItems, db.HashSetItem{Key: key, Fields: fields})
	return nil
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	m.upsertedItems = append(m.upsertedItems, items...)
	return nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.createdDef = def
	m.indexExists = true
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.indexExists, m.existsErr
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	return m.searchResult, m.searchErr
}

// --- Tests ---

func TestEnsureCollection_CreatesCosineIndex(t *testing.T) {
	store := &mockStore{}
	repo := New(store, 4)

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.createdDef == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if store.createdDef.Name != "ragdex:rag_documents:idx" {
		t.Errorf("unexpected index name: %s", store.createdDef.Name)
	}

	var vecField *db.IndexField
	for i := range store.createdDef.Fields {
		if store.createdDef.Fields[i].Type == db.IndexFieldVector {
			vecField = &store.createdDef.Fields[i]
		}
	}
	if vecField == nil {
		t.Fatal("expected a vector field in the index schema")
	}
	if vecField.VectorDistance != db.DistanceCosine {
		t.Errorf("expected cosine distance, got %s", vecField.VectorDistance)
	}
	if vecField.VectorDim != 4 {
		t.Errorf("expected dim 4, got %d", vecField.VectorDim)
	}
}

func TestEnsureCollection_Idempotent(t *testing.T) {
	store := &mockStore{indexExists: true}
	repo := New(store, 4)

	for i := 0; i < 3; i++ {
		if err := repo.EnsureCollection(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.createCalls != 0 {
		t.Errorf("expected no CreateIndex calls for existing index, got %d", store.createCalls)
	}
}

func TestEnsureCollection_ConcurrentCreateTolerated(t *testing.T) {
	store := &mockStore{createErr: db.ErrIndexExists}
	repo := New(store, 4)

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("expected ErrIndexExists to be swallowed, got %v", err)
	}
}

func TestUpsert_WritesHashFields(t *testing.T) {
	store := &mockStore{indexExists: true}
	repo := New(store, 0)

	doc := domain.Document{
		ID:        "doc1",
		Text:      "hello world",
		Metadata:  domain.Metadata{"source": "test"},
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	count, err := repo.Upsert(context.Background(), []domain.Document{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
	if len(store.upsertedItems) != 1 {
		t.Fatalf("expected 1 hash write, got %d", len(store.upsertedItems))
	}

	item := store.upsertedItems[0]
	if item.Key != "ragdex:rag_documents:doc1" {
		t.Errorf("unexpected key: %s", item.Key)
	}
	if item.Fields["__content"] != "hello world" {
		t.Errorf("unexpected content: %q", item.Fields["__content"])
	}
	if got := db.BytesToVector(item.Fields["__vector"]); len(got) != 3 {
		t.Errorf("expected 3-dim vector, got %v", got)
	}

	var meta domain.Metadata
	if err := json.Unmarshal([]byte(item.Fields["__meta"]), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta["source"] != "test" {
		t.Errorf("unexpected metadata: %v", meta)
	}
}

func TestUpsert_NilMetadataStoredAsEmptyObject(t *testing.T) {
	store := &mockStore{indexExists: true}
	repo := New(store, 0)

	doc := domain.Document{ID: "d", Text: "t", Embedding: []float32{0.1}}
	if _, err := repo.Upsert(context.Background(), []domain.Document{doc}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.upsertedItems[0].Fields["__meta"]; got != "{}" {
		t.Errorf("expected empty JSON object, got %q", got)
	}
}

func TestUpsert_StoreFailure(t *testing.T) {
	store := &mockStore{indexExists: true, hsetErr: errors.New("connection reset")}
	repo := New(store, 0)

	doc := domain.Document{ID: "d", Text: "t", Embedding: []float32{0.1}}
	_, err := repo.Upsert(context.Background(), []domain.Document{doc})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}

func TestQuery_ParsesHits(t *testing.T) {
	store := &mockStore{
		indexExists: true,
		searchResult: &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:      "ragdex:rag_documents:a",
					Distance: 0.1,
					Fields:   map[string]string{"__content": "first", "__meta": `{"source":"x"}`},
				},
				{
					Key:      "ragdex:rag_documents:b",
					Distance: 0.4,
					Fields:   map[string]string{"__content": "second", "__meta": "{}"},
				},
			},
		},
	}
	repo := New(store, 4)

	hits, err := repo.Query(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "a" || hits[1].ID != "b" {
		t.Errorf("key prefix not stripped: %s, %s", hits[0].ID, hits[1].ID)
	}
	if hits[0].Distance != 0.1 {
		t.Errorf("unexpected distance: %f", hits[0].Distance)
	}
	if hits[0].Metadata["source"] != "x" {
		t.Errorf("unexpected metadata: %v", hits[0].Metadata)
	}
	if hits[1].Metadata == nil {
		t.Error("expected empty metadata object, got nil")
	}
	if store.lastQuery.K != 5 {
		t.Errorf("expected K=5, got %d", store.lastQuery.K)
	}
}

func TestQuery_StoreFailure(t *testing.T) {
	store := &mockStore{indexExists: true, searchErr: errors.New("index corrupt")}
	repo := New(store, 4)

	_, err := repo.Query(context.Background(), []float32{0.1}, 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}

func TestQuery_EmptyResult(t *testing.T) {
	store := &mockStore{indexExists: true, searchResult: &db.SearchResult{}}
	repo := New(store, 4)

	hits, err := repo.Query(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}
