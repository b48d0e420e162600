package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hubenschmidt/go-semdex/llm"
	"github.com/hubenschmidt/go-semdex/vector"
)

// fakeEmbedder returns canned vectors keyed by input text.
type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, model, input string) (*llm.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := f.vectors[input]
	if !ok {
		return nil, errors.New("no canned vector for input")
	}
	return &llm.EmbeddingResponse{Embedding: v}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, model string, inputs []string) ([]llm.EmbeddingResponse, error) {
	results := make([]llm.EmbeddingResponse, 0, len(inputs))
	for _, input := range inputs {
		r, err := f.Embed(ctx, model, input)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

func newTestExecutor(t *testing.T, embedder *fakeEmbedder) *Executor {
	t.Helper()
	store := vector.NewMemoryStore(2)
	return NewExecutor(store, embedder, "test-model")
}

func TestExecutorIndexAndTopN(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"go docs":   {1, 0},
		"rust docs": {0, 1},
		"find go":   {1, 0},
	}}
	exec := newTestExecutor(t, embedder)

	if err := exec.Index(ctx, "go", "go docs", map[string]any{"lang": "go"}); err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if err := exec.Index(ctx, "rust", "rust docs", nil); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	results, err := exec.TopN(ctx, QueryRequest{Query: "find go", TopK: 1})
	if err != nil {
		t.Fatalf("TopN failed: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != "go" {
		t.Fatalf("results = %+v, want the go document", results)
	}
	if results[0].Document.Metadata["lang"] != "go" {
		t.Errorf("metadata not shaped into result: %+v", results[0].Document)
	}
}

func TestExecutorTopNIDsSamePipeline(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"a": {1, 0}, "b": {0, 1}, "q": {1, 0},
	}}
	exec := newTestExecutor(t, embedder)

	if err := exec.Index(ctx, "a", "a", nil); err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if err := exec.Index(ctx, "b", "b", nil); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	full, err := exec.TopN(ctx, QueryRequest{Query: "q", TopK: 2})
	if err != nil {
		t.Fatalf("TopN failed: %v", err)
	}
	ids, err := exec.TopNIDs(ctx, QueryRequest{Query: "q", TopK: 2})
	if err != nil {
		t.Fatalf("TopNIDs failed: %v", err)
	}

	if len(full) != len(ids) {
		t.Fatalf("projection length mismatch: %d vs %d", len(full), len(ids))
	}
	for i := range full {
		if full[i].Document.ID != ids[i].ID || full[i].Score != ids[i].Score {
			t.Errorf("projections diverge at %d: %+v vs %+v", i, full[i], ids[i])
		}
	}
}

func TestExecutorEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("rate limited")}
	exec := newTestExecutor(t, embedder)

	results, err := exec.TopN(context.Background(), QueryRequest{Query: "anything"})
	if !errors.Is(err, vector.ErrEmbedding) {
		t.Fatalf("got %v, want ErrEmbedding", err)
	}
	if results != nil {
		t.Errorf("partial results returned on embedding failure: %+v", results)
	}

	if err := exec.Index(context.Background(), "id", "content", nil); !errors.Is(err, vector.ErrEmbedding) {
		t.Errorf("Index embed failure: got %v, want ErrEmbedding", err)
	}
}

func TestExecutorCancellation(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float64{"q": {1, 0}}}
	exec := newTestExecutor(t, embedder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := exec.TopN(ctx, QueryRequest{Query: "q"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestExecutorDefaultTopK(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float64{"q": {1, 0}}}
	store := vector.NewMemoryStore(2)
	exec := NewExecutor(store, embedder, "test-model")

	for i := 0; i < DefaultTopK+3; i++ {
		doc := vector.Document{ID: string(rune('a' + i)), Embedding: []float64{1, 0}}
		if err := store.Upsert(ctx, []vector.Document{doc}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	results, err := exec.TopN(ctx, QueryRequest{Query: "q"})
	if err != nil {
		t.Fatalf("TopN failed: %v", err)
	}
	if len(results) != DefaultTopK {
		t.Errorf("len(results) = %d, want DefaultTopK = %d", len(results), DefaultTopK)
	}
}

func TestExecutorMetrics(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float64{"q": {1, 0}}}
	exec := newTestExecutor(t, embedder)

	if _, err := exec.TopN(ctx, QueryRequest{Query: "q"}); err != nil {
		t.Fatalf("TopN failed: %v", err)
	}

	snap := exec.Metrics().Snapshot()
	if snap.Queries != 1 {
		t.Errorf("Queries = %d, want 1", snap.Queries)
	}
	if snap.Errors != 0 {
		t.Errorf("Errors = %d, want 0", snap.Errors)
	}
}
