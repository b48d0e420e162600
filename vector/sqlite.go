package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed vector store. Vectors are persisted as
// little-endian float64 blobs and scored in Go by the same ranking
// pipeline as the reference store, so both backends agree exactly.
type SQLiteStore struct {
	db     *sql.DB
	dim    int
	logger *slog.Logger

	ready lazyInit
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path.
// The schema is created lazily on first use, exactly once.
func NewSQLiteStore(path string, dim int) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	// WAL and a busy timeout keep concurrent readers from failing while
	// a writer holds the database.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dim:    dim,
		logger: slog.Default().With("store", "sqlite"),
	}, nil
}

// ensureSchema creates the table at most once. A failed attempt is not
// memoized, so the next operation retries with its own context.
func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	return s.ready.do(func() error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY,
				content TEXT NOT NULL DEFAULT '',
				embedding BLOB NOT NULL,
				metadata TEXT NOT NULL DEFAULT '{}'
			)`)
		if err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		s.logger.Debug("schema ready", "dimension", s.dim)
		return nil
	})
}

// Upsert stores documents, updating existing ones by ID. The rowid of a
// replaced row is preserved, which keeps first-insertion order for ties.
func (s *SQLiteStore) Upsert(ctx context.Context, docs []Document) error {
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
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				content = excluded.content,
				embedding = excluded.embedding,
				metadata = excluded.metadata
		`, doc.ID, doc.Content, EncodeVector(doc.Embedding), string(metadata))
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
	}
	return nil
}

// Search finds documents similar to the given embedding.
func (s *SQLiteStore) Search(ctx context.Context, embedding []float64, opts SearchOptions) ([]SearchResult, error) {
	candidates, err := s.scan(ctx, embedding, opts)
	if err != nil {
		return nil, err
	}
	return toResults(rank(candidates, opts)), nil
}

// SearchIDs runs the same ranking pipeline but returns only ids and scores.
func (s *SQLiteStore) SearchIDs(ctx context.Context, embedding []float64, opts SearchOptions) ([]IDScore, error) {
	candidates, err := s.scan(ctx, embedding, opts)
	if err != nil {
		return nil, err
	}
	return toIDScores(rank(candidates, opts)), nil
}

func (s *SQLiteStore) scan(ctx context.Context, embedding []float64, opts SearchOptions) ([]scored, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if len(embedding) != s.dim {
		return nil, &DimensionError{Expected: s.dim, Actual: len(embedding)}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, embedding, metadata FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var candidates []scored
	for rows.Next() {
		var doc Document
		var blob []byte
		var metadata string

		if err := rows.Scan(&doc.ID, &doc.Content, &blob, &metadata); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		doc.Embedding, err = DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding for %q: %w", doc.ID, err)
		}
		if metadata != "" && metadata != "null" {
			if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %q: %w", doc.ID, err)
			}
		}

		if len(opts.Filter) > 0 && !matchesFilter(doc.Metadata, opts.Filter) {
			continue
		}

		candidates = append(candidates, scored{
			doc:   doc,
			score: CosineSimilarity(embedding, doc.Embedding),
		})
	}
	return candidates, rows.Err()
}

// Delete removes documents by ID. The batch runs in one transaction:
// a missing id rolls everything back and returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
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
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Metric reports that this store scores with exact cosine similarity.
func (s *SQLiteStore) Metric() Metric {
	return MetricCosine
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
