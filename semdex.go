// Package semdex provides vector similarity search over pluggable
// backends: an exact in-memory reference store, SQLite, PostgreSQL with
// pgvector, and Pinecone.
//
// Example usage:
//
//	store := semdex.NewMemoryStore(1536)
//	embedder := semdex.NewUnifiedClient(semdex.UnifiedConfig{
//	    OpenAIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	exec := semdex.NewExecutor(store, embedder, "text-embedding-3-small")
//
//	_ = exec.Index(ctx, "note-1", "the users table stores accounts", nil)
//	results, err := exec.TopN(ctx, semdex.QueryRequest{Query: "where are accounts kept?", TopK: 3})
package semdex

import (
	"github.com/hubenschmidt/go-semdex/llm"
	"github.com/hubenschmidt/go-semdex/search"
	"github.com/hubenschmidt/go-semdex/vector"
)

// Core type aliases for convenience.
type (
	Document      = vector.Document
	SearchResult  = vector.SearchResult
	IDScore       = vector.IDScore
	SearchOptions = vector.SearchOptions
	Store         = vector.Store
	Metric        = vector.Metric

	QueryRequest = search.QueryRequest
	Executor     = search.Executor

	EmbeddingClient = llm.EmbeddingClient
	UnifiedConfig   = llm.UnifiedConfig
)

// Error sentinels.
var (
	ErrDimensionMismatch  = vector.ErrDimensionMismatch
	ErrNotFound           = vector.ErrNotFound
	ErrEmbedding          = vector.ErrEmbedding
	ErrBackendUnavailable = vector.ErrBackendUnavailable
)

// NewMemoryStore creates the exact in-memory reference store.
func NewMemoryStore(dim int) *vector.MemoryStore {
	return vector.NewMemoryStore(dim)
}

// NewStore selects a backend from the DSN shape.
func NewStore(dsn string, dim int) (vector.Store, error) {
	return vector.NewStore(dsn, dim)
}

// NewUnifiedClient creates an embedding client for all configured providers.
func NewUnifiedClient(cfg llm.UnifiedConfig) *llm.UnifiedClient {
	return llm.NewUnifiedClient(cfg)
}

// NewExecutor creates a query executor over the given backend and embedder.
func NewExecutor(store vector.Store, embedder llm.EmbeddingClient, model string) *search.Executor {
	return search.NewExecutor(store, embedder, model)
}
