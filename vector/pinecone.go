package vector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeStore delegates storage and ranking to a Pinecone index.
// Results are approximate (recall may be below 1.0) and the service's
// own score is surfaced unmodified, tagged with the metric the index
// was created with. Thresholds are applied client-side on the returned
// matches since Pinecone has no score cutoff of its own; the cut keeps
// better-or-equal scores in whichever direction the metric orders by.
type PineconeStore struct {
	apiKey    string
	indexName string
	dim       int
	logger    *slog.Logger

	ready  lazyInit
	client *pinecone.Client
	index  *pinecone.IndexConnection

	mu     sync.RWMutex
	metric Metric
}

// NewPineconeStore creates a Pinecone-backed store. No network call is
// made here; the index connection is established lazily on first use and
// shared by all operations until Close.
func NewPineconeStore(apiKey, indexName string, dim int) *PineconeStore {
	return &PineconeStore{
		apiKey:    apiKey,
		indexName: indexName,
		dim:       dim,
		logger:    slog.Default().With("store", "pinecone", "index", indexName),
		metric:    MetricCosine,
	}
}

// connect establishes the index connection at most once. A failed
// attempt (an unreachable service, a cancelled context) is not
// memoized, so the next operation retries.
func (s *PineconeStore) connect(ctx context.Context) error {
	return s.ready.do(func() error {
		pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: s.apiKey})
		if err != nil {
			return fmt.Errorf("create pinecone client: %w: %w", ErrBackendUnavailable, err)
		}

		idx, err := pc.DescribeIndex(ctx, s.indexName)
		if err != nil {
			return fmt.Errorf("describe index %q: %w: %w", s.indexName, ErrBackendUnavailable, err)
		}

		conn, err := pc.Index(pinecone.NewIndexConnParams{Host: idx.Host})
		if err != nil {
			return fmt.Errorf("connect index %q: %w: %w", s.indexName, ErrBackendUnavailable, err)
		}

		s.client = pc
		s.index = conn
		s.mu.Lock()
		s.metric = Metric(idx.Metric)
		s.mu.Unlock()
		s.logger.Debug("index connected", "host", idx.Host, "metric", idx.Metric)
		return nil
	})
}

// Upsert stores documents, updating existing ones by ID. The document
// content travels inside metadata under the "content" key so Search can
// reconstruct full documents.
func (s *PineconeStore) Upsert(ctx context.Context, docs []Document) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	vectors := make([]*pinecone.Vector, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) != s.dim {
			return &DimensionError{Expected: s.dim, Actual: len(doc.Embedding)}
		}

		fields := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			fields[k] = v
		}
		if doc.Content != "" {
			fields["content"] = doc.Content
		}

		var metadata *structpb.Struct
		if len(fields) > 0 {
			var err error
			metadata, err = structpb.NewStruct(fields)
			if err != nil {
				return fmt.Errorf("convert metadata for %q: %w", doc.ID, err)
			}
		}

		values := toFloat32(doc.Embedding)
		vectors[i] = &pinecone.Vector{
			Id:       doc.ID,
			Values:   &values,
			Metadata: metadata,
		}
	}

	if _, err := s.index.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

// Search finds documents similar to the given embedding.
func (s *PineconeStore) Search(ctx context.Context, embedding []float64, opts SearchOptions) ([]SearchResult, error) {
	matches, err := s.query(ctx, embedding, opts, true)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		doc := Document{ID: m.Vector.Id}
		if m.Vector.Values != nil {
			doc.Embedding = toFloat64(*m.Vector.Values)
		}
		if m.Vector.Metadata != nil {
			fields := m.Vector.Metadata.AsMap()
			if content, ok := fields["content"].(string); ok {
				doc.Content = content
				delete(fields, "content")
			}
			if len(fields) > 0 {
				doc.Metadata = fields
			}
		}
		results = append(results, SearchResult{Document: doc, Score: float64(m.Score)})
	}
	return results, nil
}

// SearchIDs runs the same query without fetching metadata.
func (s *PineconeStore) SearchIDs(ctx context.Context, embedding []float64, opts SearchOptions) ([]IDScore, error) {
	matches, err := s.query(ctx, embedding, opts, false)
	if err != nil {
		return nil, err
	}

	results := make([]IDScore, 0, len(matches))
	for _, m := range matches {
		results = append(results, IDScore{ID: m.Vector.Id, Score: float64(m.Score)})
	}
	return results, nil
}

func (s *PineconeStore) query(ctx context.Context, embedding []float64, opts SearchOptions, includeMetadata bool) ([]*pinecone.ScoredVector, error) {
	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	if len(embedding) != s.dim {
		return nil, &DimensionError{Expected: s.dim, Actual: len(embedding)}
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}

	var filter *structpb.Struct
	if len(opts.Filter) > 0 {
		var err error
		filter, err = structpb.NewStruct(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("convert filter: %w", err)
		}
	}

	resp, err := s.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          toFloat32(embedding),
		TopK:            uint32(topK),
		IncludeValues:   includeMetadata,
		IncludeMetadata: includeMetadata,
		MetadataFilter:  filter,
	})
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	matches := resp.Matches
	if opts.Threshold != nil {
		metric := s.Metric()
		kept := matches[:0]
		for _, m := range matches {
			if scorePasses(metric, float64(m.Score), *opts.Threshold) {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	return matches, nil
}

// scorePasses applies a threshold cut in the direction the metric
// orders by: higher is better for cosine and dot product, lower for
// euclidean distance. Both comparisons are inclusive.
func scorePasses(metric Metric, score, threshold float64) bool {
	if metric == MetricEuclidean {
		return score <= threshold
	}
	return score >= threshold
}

// Delete removes documents by ID. Pinecone treats deletion of an unknown
// id as a no-op, so absent ids cannot be reported as ErrNotFound here.
func (s *PineconeStore) Delete(ctx context.Context, ids []string) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	if err := s.index.DeleteVectorsById(ctx, ids); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	return nil
}

// Count returns the number of vectors in the index.
func (s *PineconeStore) Count(ctx context.Context) (int, error) {
	if err := s.connect(ctx); err != nil {
		return 0, err
	}

	stats, err := s.index.DescribeIndexStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("describe index stats: %w", err)
	}
	return int(stats.TotalVectorCount), nil
}

// Metric reports the distance metric the Pinecone index was created
// with. Before the first connection it reports the cosine default.
func (s *PineconeStore) Metric() Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metric
}

// Close releases the index connection. Safe to call before first use.
func (s *PineconeStore) Close() error {
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
