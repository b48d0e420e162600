// Package vector provides vector storage and similarity search over
// pluggable backends.
package vector

import "context"

// Metric identifies the distance metric a backend scores with. Backends
// that delegate scoring to a remote engine surface the engine's score
// unmodified, tagged with this metric.
type Metric string

const (
	MetricCosine     Metric = "cosine"
	MetricDotProduct Metric = "dotproduct"
	MetricEuclidean  Metric = "euclidean"
)

// Document represents a document with optional embedding.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float64      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SearchResult represents a search result with similarity score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"` // cosine similarity (-1 to 1)
}

// IDScore is the id-only projection of a search result.
type IDScore struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// SearchOptions controls filtering, ordering, and truncation of a search.
type SearchOptions struct {
	// TopK bounds the result length. Zero or negative means no bound.
	TopK int

	// Threshold, when set, keeps only results with score >= *Threshold.
	// Nil means no score filtering.
	Threshold *float64

	// Filter, when non-empty, keeps only documents whose metadata matches
	// every key/value pair by equality.
	Filter map[string]any
}

// Store provides vector storage and similarity search operations.
// All implementations share the same semantics: upsert-by-ID, fixed
// dimension per store, descending score order with stable ties, and
// empty results (never an error) when nothing matches.
type Store interface {
	// Upsert stores documents, updating existing ones by ID.
	Upsert(ctx context.Context, docs []Document) error

	// Search finds documents similar to the given embedding.
	Search(ctx context.Context, embedding []float64, opts SearchOptions) ([]SearchResult, error)

	// SearchIDs runs the same search but returns only ids and scores.
	SearchIDs(ctx context.Context, embedding []float64, opts SearchOptions) ([]IDScore, error)

	// Delete removes documents by ID. A missing ID is ErrNotFound and,
	// where the backend can detect it, leaves the whole batch unapplied.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Metric declares the distance metric this backend scores with.
	Metric() Metric

	// Close releases resources.
	Close() error
}
