package domain

// Metadata is the free-form annotation payload attached to a document.
type Metadata map[string]any

// Document is a record persisted in the vector store, keyed by ID.
// Re-upserting the same ID overwrites the previous record.
type Document struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float32
}

// Hit is a single nearest-neighbor match from the vector store.
// Distance is the raw cosine distance (smaller = more similar).
type Hit struct {
	ID       string
	Distance float64
	Text     string
	Metadata Metadata
}
