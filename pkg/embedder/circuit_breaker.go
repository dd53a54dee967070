package embedder

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/duograph/duograph/pkg/alert"
)

// BreakerConfig holds circuit breaker settings for the embedding provider.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// DefaultBreakerConfig returns sane circuit breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		ReadyToTripRatio: 0.6,
	}
}

// CircuitBreakerClient wraps a Client with circuit breaking. When the
// embedding provider starts failing consistently the breaker opens,
// ingestion fails fast instead of piling up timeouts, and the alerter is
// notified.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewCircuitBreakerClient creates a circuit-breaking wrapper around client.
// alerter may be nil.
func NewCircuitBreakerClient(client Client, cfg BreakerConfig, alerter alert.Alerter) *CircuitBreakerClient {
	st := gobreaker.Settings{
		Name:        "embedder",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit breaker %q changed from %s to %s. Embedding provider is failing.", name, from, to)
				_ = alerter.Alert(fmt.Sprintf("Circuit breaker tripped: %s", name), msg)
			}
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

// Embed implements Client.
func (c *CircuitBreakerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Embed(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return out.([][]float32), nil
}

// EmbedSingle implements Client.
func (c *CircuitBreakerClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.EmbedSingle(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float32), nil
}

// Dimensions returns the wrapped client's dimensions.
func (c *CircuitBreakerClient) Dimensions() int { return c.client.Dimensions() }

// Close closes the wrapped client.
func (c *CircuitBreakerClient) Close() error { return c.client.Close() }
