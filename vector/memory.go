package vector

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is the exact, in-memory reference store. Every search is a
// brute-force scan, so it is intended for small collections and for
// validating other backends against. Entries keep their first-insertion
// order across upserts, which is what ties fall back to during ranking.
type MemoryStore struct {
	mu     sync.RWMutex
	dim    int
	docs   []Document
	byID   map[string]int
	closed bool
}

// NewMemoryStore creates an in-memory store with a fixed dimension.
// A dim of 0 adopts the dimension of the first inserted vector.
func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{
		dim:  dim,
		byID: make(map[string]int),
	}
}

// Upsert stores documents, updating existing ones by ID. Overwriting an
// existing id keeps its original position in insertion order.
func (s *MemoryStore) Upsert(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for _, doc := range docs {
		if s.dim == 0 {
			s.dim = len(doc.Embedding)
		}
		if len(doc.Embedding) != s.dim {
			return &DimensionError{Expected: s.dim, Actual: len(doc.Embedding)}
		}

		entry := cloneDocument(doc)
		if i, ok := s.byID[doc.ID]; ok {
			s.docs[i] = entry
			continue
		}
		s.byID[doc.ID] = len(s.docs)
		s.docs = append(s.docs, entry)
	}
	return nil
}

// Search finds documents similar to the given embedding using brute-force
// cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, embedding []float64, opts SearchOptions) ([]SearchResult, error) {
	candidates, err := s.scan(embedding, opts)
	if err != nil {
		return nil, err
	}
	return toResults(rank(candidates, opts)), nil
}

// SearchIDs runs the same ranking pipeline but returns only ids and scores.
func (s *MemoryStore) SearchIDs(ctx context.Context, embedding []float64, opts SearchOptions) ([]IDScore, error) {
	candidates, err := s.scan(embedding, opts)
	if err != nil {
		return nil, err
	}
	return toIDScores(rank(candidates, opts)), nil
}

// scan scores every stored entry against the query under a read lock, so
// each query observes a consistent snapshot while writers wait.
func (s *MemoryStore) scan(embedding []float64, opts SearchOptions) ([]scored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.dim > 0 && len(embedding) != s.dim {
		return nil, &DimensionError{Expected: s.dim, Actual: len(embedding)}
	}

	candidates := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		if len(opts.Filter) > 0 && !matchesFilter(doc.Metadata, opts.Filter) {
			continue
		}
		candidates = append(candidates, scored{
			doc:   cloneDocument(doc),
			score: CosineSimilarity(embedding, doc.Embedding),
		})
	}
	return candidates, nil
}

// Delete removes documents by ID. The batch is atomic: a missing id
// fails the whole call with ErrNotFound and nothing is deleted.
func (s *MemoryStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			return fmt.Errorf("delete %q: %w", id, ErrNotFound)
		}
	}

	for _, id := range ids {
		i, ok := s.byID[id]
		if !ok {
			continue // duplicate id in the batch
		}
		s.docs = append(s.docs[:i], s.docs[i+1:]...)
		delete(s.byID, id)
		for j := i; j < len(s.docs); j++ {
			s.byID[s.docs[j].ID] = j
		}
	}
	return nil
}

// Count returns the number of documents in the store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.docs), nil
}

// Metric reports that this store scores with exact cosine similarity.
func (s *MemoryStore) Metric() Metric {
	return MetricCosine
}

// Close marks the store closed. Subsequent operations fail with
// ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
