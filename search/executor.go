// Package search orchestrates query embedding and backend delegation.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hubenschmidt/go-semdex/llm"
	"github.com/hubenschmidt/go-semdex/monitor"
	"github.com/hubenschmidt/go-semdex/vector"
)

// DefaultTopK is used when a request does not bound the result size.
const DefaultTopK = 5

// QueryRequest describes a caller-facing similarity query.
type QueryRequest struct {
	// Query is the text to embed and search with.
	Query string

	// TopK bounds the result length. Values <= 0 use DefaultTopK.
	TopK int

	// Threshold, when set, keeps only results with score >= *Threshold.
	Threshold *float64

	// Filter keeps only documents whose metadata matches every pair.
	Filter map[string]any
}

// Executor is the single entry point for similarity queries. It embeds
// the query text, delegates ranking to the active backend, and shapes
// the output. Callers never see which backend is active beyond its
// declared metric.
type Executor struct {
	store    vector.Store
	embedder llm.EmbeddingClient
	model    string
	metrics  *monitor.Collector
	logger   *slog.Logger
}

// NewExecutor creates an executor over the given backend and embedding
// provider. model names the embedding model passed to the provider.
func NewExecutor(store vector.Store, embedder llm.EmbeddingClient, model string) *Executor {
	return &Executor{
		store:    store,
		embedder: embedder,
		model:    model,
		metrics:  monitor.NewCollector(),
		logger:   slog.Default().With("component", "search"),
	}
}

// TopN embeds the query and returns the best-matching documents with
// their scores, highest first.
func (e *Executor) TopN(ctx context.Context, req QueryRequest) ([]vector.SearchResult, error) {
	embedding, opts, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := e.store.Search(ctx, embedding, opts)
	e.metrics.Record(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// TopNIDs runs the identical pipeline but returns only ids and scores.
func (e *Executor) TopNIDs(ctx context.Context, req QueryRequest) ([]vector.IDScore, error) {
	embedding, opts, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := e.store.SearchIDs(ctx, embedding, opts)
	e.metrics.Record(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// prepare embeds the query text. An embedding failure fails the whole
// query; no partial results are ever returned.
func (e *Executor) prepare(ctx context.Context, req QueryRequest) ([]float64, vector.SearchOptions, error) {
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}

	resp, err := e.embedder.Embed(ctx, e.model, req.Query)
	if err != nil {
		e.metrics.Record(0, err)
		return nil, vector.SearchOptions{}, fmt.Errorf("embed query: %w: %w", vector.ErrEmbedding, err)
	}

	opts := vector.SearchOptions{
		TopK:      req.TopK,
		Threshold: req.Threshold,
		Filter:    req.Filter,
	}
	return resp.Embedding, opts, nil
}

// Index embeds content and upserts it into the backend under id.
func (e *Executor) Index(ctx context.Context, id, content string, metadata map[string]any) error {
	resp, err := e.embedder.Embed(ctx, e.model, content)
	if err != nil {
		return fmt.Errorf("embed content: %w: %w", vector.ErrEmbedding, err)
	}

	doc := vector.Document{
		ID:        id,
		Content:   content,
		Embedding: resp.Embedding,
		Metadata:  metadata,
	}
	if err := e.store.Upsert(ctx, []vector.Document{doc}); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	e.logger.Debug("document indexed", "id", id, "dimension", len(resp.Embedding))
	return nil
}

// Metrics exposes the executor's query metrics collector.
func (e *Executor) Metrics() *monitor.Collector {
	return e.metrics
}
