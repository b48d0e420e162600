package vector

import (
	"fmt"
	"os"
	"strings"
)

// NewStore creates a backend based on the DSN:
//   - "" or ":memory:": in-memory store
//   - postgres:// or postgresql://: PostgreSQL with pgvector
//   - pinecone://<index-name>: Pinecone (API key from PINECONE_API_KEY)
//   - anything else: SQLite at the specified path
func NewStore(dsn string, dim int) (Store, error) {
	switch {
	case dsn == "" || dsn == ":memory:":
		return NewMemoryStore(dim), nil

	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		s, err := NewPgVectorStore(dsn, dim)
		if err != nil {
			return nil, fmt.Errorf("pgvector: %w", err)
		}
		return s, nil

	case strings.HasPrefix(dsn, "pinecone://"):
		indexName := strings.TrimPrefix(dsn, "pinecone://")
		if indexName == "" {
			return nil, fmt.Errorf("pinecone DSN missing index name")
		}
		apiKey := os.Getenv("PINECONE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("PINECONE_API_KEY is required for pinecone backend")
		}
		return NewPineconeStore(apiKey, indexName, dim), nil

	default:
		s, err := NewSQLiteStore(dsn, dim)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, nil
	}
}
