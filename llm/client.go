// Package llm provides embedding provider clients.
package llm

import "context"

// EmbeddingClient converts text into fixed-dimension vectors. It is the
// only surface the rest of the module consumes an embedding provider
// through; retry policy, if any, belongs to the implementation.
type EmbeddingClient interface {
	// Embed generates an embedding for a single input.
	Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error)

	// EmbedBatch generates embeddings for multiple inputs.
	EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error)
}

// ClientConfig holds common client construction options.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      int
	DefaultModel string
}

// DefaultClientConfig returns a config with a 60 second timeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 60,
	}
}
