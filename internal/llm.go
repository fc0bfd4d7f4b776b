package internal

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoProvider = errors.New("no LLM provider configured")

// Embedder turns text into fixed-dimension vectors. Build and search must
// use the same model, so Model() identifies the embedding space and is
// recorded in the corpus snapshot.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
	Close() error
}

type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GenerateObject(ctx context.Context, prompt string, target any) error
	Stream(ctx context.Context, prompt string) (<-chan string, error)
}

// GapDigest is the structured output of the knowledge-gap report.
type GapDigest struct {
	Summary           string   `json:"summary"`
	Themes            []string `json:"themes"`
	SuggestedArticles []string `json:"suggested_articles"`
}

// NewEmbedder builds the embedding backend selected in the config.
func NewEmbedder(cfg EmbeddingsConfig) (Embedder, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalEmbedder(cfg.Dimension)
	case BackendOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimension,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported embeddings backend: %s", cfg.Backend)
	}
}
