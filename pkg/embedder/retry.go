package embedder

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int
	// InitialDelay is the delay before the first retry (default: 1s)
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries (default: 30s)
	MaxDelay time.Duration
	// BackoffMultiplier is the exponential backoff factor (default: 2.0)
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryClient wraps a Client and retries transient embedding failures with
// exponential backoff. Validation failures (empty input) are not retried.
type RetryClient struct {
	client Client
	config *RetryConfig
}

// NewRetryClient creates a retrying wrapper around client.
func NewRetryClient(client Client, config *RetryConfig) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 1 * time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 2.0
	}
	return &RetryClient{client: client, config: config}
}

func (r *RetryClient) delay(attempt int) time.Duration {
	d := time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.BackoffMultiplier, float64(attempt)))
	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	return d
}

func (r *RetryClient) do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, ErrEmptyInput) {
			return err
		}
		if attempt >= r.config.MaxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}
}

// Embed generates embeddings, retrying on failure.
func (r *RetryClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.do(ctx, func() error {
		var err error
		out, err = r.client.Embed(ctx, texts)
		return err
	})
	return out, err
}

// EmbedSingle generates an embedding for a single text, retrying on failure.
func (r *RetryClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.do(ctx, func() error {
		var err error
		out, err = r.client.EmbedSingle(ctx, text)
		return err
	})
	return out, err
}

// Dimensions returns the wrapped client's dimensions.
func (r *RetryClient) Dimensions() int { return r.client.Dimensions() }

// Close closes the wrapped client.
func (r *RetryClient) Close() error { return r.client.Close() }
