package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgVectorStore is a PostgreSQL-based vector store using pgvector.
// Scoring happens server-side with the cosine distance operator, so
// scores agree with the reference store to floating-point tolerance but
// are not bit-identical; ordering and threshold semantics are the same.
type PgVectorStore struct {
	db     *sql.DB
	dim    int
	logger *slog.Logger

	ready lazyInit
}

// NewPgVectorStore creates a new pgvector-based store. The dimension
// parameter specifies the embedding dimension (e.g., 1536 for OpenAI).
// No connection is made until first use; the schema and index are
// created lazily, exactly once.
func NewPgVectorStore(dsn string, dim int) (*PgVectorStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &PgVectorStore{
		db:     db,
		dim:    dim,
		logger: slog.Default().With("store", "pgvector"),
	}, nil
}

// ensureSchema runs the migrations at most once. A failed attempt is
// not memoized: the operation that triggered it fails, and the next
// operation retries with its own context.
func (s *PgVectorStore) ensureSchema(ctx context.Context) error {
	return s.ready.do(func() error {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w: %w", ErrBackendUnavailable, err)
		}

		migrations := []string{
			`CREATE EXTENSION IF NOT EXISTS vector`,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY,
				content TEXT NOT NULL,
				embedding vector(%d),
				metadata JSONB DEFAULT '{}',
				created_at TIMESTAMPTZ DEFAULT NOW()
			)`, s.dim),
			`CREATE INDEX IF NOT EXISTS idx_documents_embedding ON documents USING hnsw (embedding vector_cosine_ops)`,
		}

		for _, m := range migrations {
			if _, err := s.db.ExecContext(ctx, m); err != nil {
				return fmt.Errorf("execute migration: %w", err)
			}
		}
		s.logger.Debug("schema ready", "dimension", s.dim)
		return nil
	})
}

// Upsert stores documents, updating existing ones by ID.
func (s *PgVectorStore) Upsert(ctx context.Context, docs []Document) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	for _, doc := range docs {
		if len(doc.Embedding) != s.dim {
			return &DimensionError{Expected: s.dim, Actual: len(doc.Embedding)}
		}

		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO documents (id, content, embedding, metadata)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding,
				metadata = EXCLUDED.metadata
		`, doc.ID, doc.Content, formatEmbedding(doc.Embedding), metadata)
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
	}
	return nil
}

// Search finds documents similar to the given embedding. Threshold and
// TopK are translated into the engine's WHERE / ORDER BY / LIMIT.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float64, opts SearchOptions) ([]SearchResult, error) {
	rows, err := s.query(ctx, embedding, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var doc Document
		var embeddingStr string
		var metadataBytes []byte
		var score float64

		if err := rows.Scan(&doc.ID, &doc.Content, &embeddingStr, &metadataBytes, &score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		doc.Embedding = parseEmbedding(embeddingStr)
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %q: %w", doc.ID, err)
			}
		}

		results = append(results, SearchResult{Document: doc, Score: score})
	}
	return results, rows.Err()
}

// SearchIDs runs the same query but keeps only ids and scores.
func (s *PgVectorStore) SearchIDs(ctx context.Context, embedding []float64, opts SearchOptions) ([]IDScore, error) {
	rows, err := s.query(ctx, embedding, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []IDScore
	for rows.Next() {
		var r IDScore
		var content, embeddingStr string
		var metadataBytes []byte

		if err := rows.Scan(&r.ID, &content, &embeddingStr, &metadataBytes, &r.Score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) query(ctx context.Context, embedding []float64, opts SearchOptions) (*sql.Rows, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if len(embedding) != s.dim {
		return nil, &DimensionError{Expected: s.dim, Actual: len(embedding)}
	}

	query := `
		SELECT id, content, embedding, metadata, 1 - (embedding <=> $1) AS score
		FROM documents`
	args := []any{formatEmbedding(embedding)}

	var where []string
	if opts.Threshold != nil {
		args = append(args, *opts.Threshold)
		where = append(where, fmt.Sprintf("1 - (embedding <=> $1) >= $%d", len(args)))
	}
	if len(opts.Filter) > 0 {
		filter, err := json.Marshal(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		args = append(args, filter)
		where = append(where, fmt.Sprintf("metadata @> $%d", len(args)))
	}
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}

	query += "\n\t\tORDER BY embedding <=> $1"
	if opts.TopK > 0 {
		args = append(args, opts.TopK)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Delete removes documents by ID. The batch runs in one transaction:
// a missing id rolls everything back and returns ErrNotFound.
func (s *PgVectorStore) Delete(ctx context.Context, ids []string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("delete %q: %w", id, ErrNotFound)
		}
	}
	return tx.Commit()
}

// Count returns the number of documents in the store.
func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Metric reports that this store scores with cosine similarity computed
// server-side by pgvector.
func (s *PgVectorStore) Metric() Metric {
	return MetricCosine
}

// Close closes the database connection.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// formatEmbedding converts a float64 slice to pgvector format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float64) string {
	if len(embedding) == 0 {
		return ""
	}

	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseEmbedding converts pgvector format back to float64 slice.
func parseEmbedding(s string) []float64 {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]float64, len(parts))
	for i, p := range parts {
		fmt.Sscanf(p, "%f", &result[i])
	}
	return result
}
