package embedder

import (
	"context"
	"fmt"

	embedeverything "github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// LocalEmbedder implements Client using an in-process sentence transformer
// via go-embedeverything. No network round trip is involved, which keeps
// the embedding stage out of the transient-failure path entirely.
type LocalEmbedder struct {
	client *embedeverything.Embedder
	config Config
}

// NewLocalEmbedder loads the named model and returns a local embedder.
func NewLocalEmbedder(config Config) (*LocalEmbedder, error) {
	if config.Model == "" {
		config.Model = "all-MiniLM-L6-v2"
	}

	client, err := embedeverything.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding model %q: %w", config.Model, err)
	}

	return &LocalEmbedder{
		client: client,
		config: config,
	}, nil
}

// Embed generates embeddings for the given texts.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	// go-embedeverything does not support context yet
	embeddings, err := e.client.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *LocalEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *LocalEmbedder) Dimensions() int {
	return e.config.dimensions()
}

// Close releases the model.
func (e *LocalEmbedder) Close() error {
	e.client.Close()
	return nil
}
