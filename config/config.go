// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything needed to wire a store and an embedder.
type Config struct {
	// DSN selects the backend; see vector.NewStore for the accepted forms.
	DSN string

	// Dimension is the fixed embedding dimension of the collection.
	Dimension int

	// EmbedModel names the embedding model.
	EmbedModel string

	OpenAIKey      string
	OllamaURL      string
	PineconeAPIKey string
}

// Load reads configuration from the environment, after loading a .env
// file if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DSN:            getEnv("SEMDEX_DSN", ""),
		EmbedModel:     getEnv("SEMDEX_EMBED_MODEL", "text-embedding-3-small"),
		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434"),
		PineconeAPIKey: getEnv("PINECONE_API_KEY", ""),
	}

	dim := getEnv("SEMDEX_DIMENSION", "1536")
	n, err := strconv.Atoi(dim)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("SEMDEX_DIMENSION must be a positive integer, got %q", dim)
	}
	cfg.Dimension = n

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
