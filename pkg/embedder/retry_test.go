package embedder_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duograph/duograph/pkg/embedder"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (f *flakyClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *flakyClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vec, err := f.EmbedSingle(ctx, texts[0])
	if err != nil {
		return nil, err
	}
	return [][]float32{vec}, nil
}

func (f *flakyClient) Dimensions() int { return 3 }
func (f *flakyClient) Close() error    { return nil }

func fastRetryConfig() *embedder.RetryConfig {
	return &embedder.RetryConfig{
		MaxRetries:        3,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryClientRecoversFromTransientFailures(t *testing.T) {
	base := &flakyClient{failures: 2, err: errors.New("connection reset")}
	client := embedder.NewRetryClient(base, fastRetryConfig())

	vec, err := client.EmbedSingle(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, 3, base.calls)
}

func TestRetryClientGivesUpAfterMaxRetries(t *testing.T) {
	cause := errors.New("connection reset")
	base := &flakyClient{failures: 100, err: cause}
	client := embedder.NewRetryClient(base, fastRetryConfig())

	_, err := client.EmbedSingle(context.Background(), "some text")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	// Initial attempt plus three retries.
	assert.Equal(t, 4, base.calls)
}

func TestRetryClientDoesNotRetryEmptyInput(t *testing.T) {
	base := &flakyClient{failures: 100, err: embedder.ErrEmptyInput}
	client := embedder.NewRetryClient(base, fastRetryConfig())

	_, err := client.EmbedSingle(context.Background(), "")
	assert.ErrorIs(t, err, embedder.ErrEmptyInput)
	assert.Equal(t, 1, base.calls)
}

func TestRetryClientDoesNotRetryWrappedEmptyInput(t *testing.T) {
	cause := fmt.Errorf("provider rejected request: %w", embedder.ErrEmptyInput)
	base := &flakyClient{failures: 100, err: cause}
	client := embedder.NewRetryClient(base, fastRetryConfig())

	_, err := client.EmbedSingle(context.Background(), "")
	assert.ErrorIs(t, err, embedder.ErrEmptyInput)
	assert.Equal(t, 1, base.calls)
}

func TestRetryClientRespectsContextCancellation(t *testing.T) {
	base := &flakyClient{failures: 100, err: errors.New("slow backend")}
	client := embedder.NewRetryClient(base, &embedder.RetryConfig{
		MaxRetries:        10,
		InitialDelay:      time.Hour,
		MaxDelay:          time.Hour,
		BackoffMultiplier: 2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.EmbedSingle(ctx, "some text")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, base.calls)
}

func TestRetryClientPassesThroughMetadata(t *testing.T) {
	base := &flakyClient{}
	client := embedder.NewRetryClient(base, nil)

	assert.Equal(t, 3, client.Dimensions())
	assert.NoError(t, client.Close())
}
