package embedder

import (
	"context"
	"errors"
)

// DefaultDimensions matches the all-MiniLM-L6-v2 sentence transformer used
// by the stock deployment.
const DefaultDimensions = 384

// ErrEmptyInput is returned when an empty text is submitted for embedding.
var ErrEmptyInput = errors.New("cannot embed empty text")

// Client generates fixed-length embedding vectors for text.
type Client interface {
	// Embed generates embeddings for the given texts in one batch.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector length this client produces.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds settings shared by embedder implementations.
type Config struct {
	// Model is the embedding model name.
	Model string
	// BaseURL points the OpenAI client at a compatible service. Empty
	// means api.openai.com.
	BaseURL string
	// Dimensions is the expected vector length. Zero means
	// DefaultDimensions.
	Dimensions int
}

func (c *Config) dimensions() int {
	if c.Dimensions > 0 {
		return c.Dimensions
	}
	return DefaultDimensions
}
