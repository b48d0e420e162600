package llm

import (
	"context"
	"fmt"
	"strings"
)

// UnifiedConfig configures a UnifiedClient.
type UnifiedConfig struct {
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaURL     string
}

// UnifiedClient routes embedding requests to the right provider based on
// the model name: OpenAI "text-embedding-*" models go to OpenAI,
// everything else to Ollama.
type UnifiedClient struct {
	openai *OpenAIEmbedClient
	ollama *OllamaEmbedClient
}

// NewUnifiedClient creates a client for all configured providers.
func NewUnifiedClient(cfg UnifiedConfig) *UnifiedClient {
	u := &UnifiedClient{}

	if cfg.OpenAIKey != "" {
		u.openai = NewOpenAIEmbedClientWithConfig(ClientConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}
	if cfg.OllamaURL != "" {
		u.ollama = NewOllamaEmbedClient(cfg.OllamaURL)
	}

	return u
}

// Embed generates an embedding for a single input.
func (u *UnifiedClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	client, err := u.resolve(model)
	if err != nil {
		return nil, err
	}
	return client.Embed(ctx, model, input)
}

// EmbedBatch generates embeddings for multiple inputs.
func (u *UnifiedClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	client, err := u.resolve(model)
	if err != nil {
		return nil, err
	}
	return client.EmbedBatch(ctx, model, inputs)
}

func (u *UnifiedClient) resolve(model string) (EmbeddingClient, error) {
	if strings.HasPrefix(model, "text-embedding") {
		if u.openai == nil {
			return nil, fmt.Errorf("model %q requires an OpenAI API key", model)
		}
		return u.openai, nil
	}
	if u.ollama == nil {
		if u.openai != nil {
			return u.openai, nil
		}
		return nil, fmt.Errorf("no embedding provider configured for model %q", model)
	}
	return u.ollama, nil
}
