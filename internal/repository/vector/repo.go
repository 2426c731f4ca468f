// Package vector is the storage adapter for the single RAG document
// collection. It owns the key scheme, the FT index lifecycle, and the
// hash field layout.
package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

// CollectionName is the fixed collection all documents live in.
const CollectionName = "rag_documents"

// KeyPrefix namespaces all ragdex keys in the store.
const KeyPrefix = "ragdex:"

// store is the consumer interface for vector operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the vector store adapter over a Redis FT index.
// The collection index is created lazily on first use, configured for
// cosine distance.
type Repo struct {
	store store
	dim   int

	mu    sync.Mutex
	ready bool
}

// New creates a vector repository. dim is the embedding dimension used
// when the index has to be created; if zero, the dimension of the first
// upserted vector is used.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

// EnsureCollection creates the FT index if it does not exist yet. Idempotent.
func (r *Repo) EnsureCollection(ctx context.Context) error {
	return r.ensure(ctx, r.dim)
}

func (r *Repo) ensure(ctx context.Context, fallbackDim int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}

	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("%w: check index: %w", domain.ErrStore, err)
	}
	if exists {
		r.ready = true
		return nil
	}

	dim := r.dim
	if dim <= 0 {
		dim = fallbackDim
	}
	if dim <= 0 {
		return fmt.Errorf("%w: cannot create index without a known vector dimension", domain.ErrStore)
	}

	def := &db.IndexDefinition{
		Name:     indexName(),
		Prefixes: []string{docKeyPrefix()},
		Fields: []db.IndexField{
			{Name: "__content", Type: db.IndexFieldText},
			{
				Name:           "__vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			r.ready = true
			return nil
		}
		return fmt.Errorf("%w: create index: %w", domain.ErrStore, err)
	}

	r.ready = true
	return nil
}

// Upsert writes documents into the collection, overwriting on id collision.
// Returns the number of records written.
func (r *Repo) Upsert(ctx context.Context, docs []domain.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	fallbackDim := len(docs[0].Embedding)
	if err := r.ensure(ctx, fallbackDim); err != nil {
		return 0, err
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		fields, err := buildHashFields(&docs[i])
		if err != nil {
			return 0, fmt.Errorf("document %s: %w", docs[i].ID, err)
		}
		items = append(items, db.HashSetItem{
			Key:    docKey(docs[i].ID),
			Fields: fields,
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("%w: upsert: %w", domain.ErrStore, err)
	}

	return len(items), nil
}

// Query runs a KNN search and returns hits ordered by ascending cosine
// distance (most similar first), at most topK of them.
func (r *Repo) Query(ctx context.Context, vector []float32, topK int) ([]domain.Hit, error) {
	if err := r.ensure(ctx, len(vector)); err != nil {
		return nil, err
	}

	q := &db.KNNQuery{
		IndexName:    indexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"__content", "__meta"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: knn query: %w", domain.ErrStore, err)
	}

	return parseHits(sr), nil
}

func parseHits(sr *db.SearchResult) []domain.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := docKeyPrefix()
	hits := make([]domain.Hit, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		hit := domain.Hit{
			ID:       strings.TrimPrefix(entry.Key, prefix),
			Distance: entry.Distance,
			Text:     entry.Fields["__content"],
			Metadata: domain.Metadata{},
		}
		if raw := entry.Fields["__meta"]; raw != "" {
			var meta domain.Metadata
			if json.Unmarshal([]byte(raw), &meta) == nil && meta != nil {
				hit.Metadata = meta
			}
		}
		hits = append(hits, hit)
	}

	return hits
}

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
func buildHashFields(doc *domain.Document) (map[string]string, error) {
	meta := doc.Metadata
	if meta == nil {
		meta = domain.Metadata{}
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return map[string]string{
		"__content": doc.Text,
		"__vector":  db.VectorToBytes(doc.Embedding),
		"__meta":    string(rawMeta),
	}, nil
}

func indexName() string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, CollectionName)
}

func docKeyPrefix() string {
	return fmt.Sprintf("%s%s:", KeyPrefix, CollectionName)
}

func docKey(id string) string {
	return docKeyPrefix() + id
}
