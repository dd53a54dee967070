package duograph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/types"
)

func seedDocuments(t *testing.T, f *testFixture, docs ...types.Document) {
	t.Helper()
	for _, doc := range docs {
		_, err := f.client.AddDocument(context.Background(), doc)
		require.NoError(t, err)
	}
}

func TestRetrieveRoundTrip(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f,
		types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"},
		types.Document{ID: "doc2", Subject: "eng", Content: "zzzzzzzz"},
	)

	results, err := f.client.Retrieve(context.Background(), "vacation policy", nil)
	require.NoError(t, err)
	assert.Equal(t, "vacation policy", results.Query)
	assert.Empty(t, results.Partial)

	require.NotEmpty(t, results.VectorHits)
	assert.Equal(t, "doc1", results.VectorHits[0].ID)

	var doc2Score float64
	for _, hit := range results.VectorHits {
		if hit.ID == "doc2" {
			doc2Score = hit.Score
		}
	}
	assert.Greater(t, results.VectorHits[0].Score, doc2Score)
}

func TestRetrieveReturnsBothModalities(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f, types.Document{ID: "vacation-doc", Subject: "hr", Content: "vacation policy"})

	results, err := f.client.Retrieve(context.Background(), "vacation", nil)
	require.NoError(t, err)

	// The vector hit and the graph hit for the same document are both
	// present, unmerged.
	require.NotEmpty(t, results.VectorHits)
	assert.Equal(t, "vacation-doc", results.VectorHits[0].ID)
	require.NotEmpty(t, results.GraphHits)
	assert.Equal(t, "vacation-doc", results.GraphHits[0]["id"])
}

func TestRetrieveSubjectFilter(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f,
		// Identical content: the eng document would score at least as
		// high without the filter.
		types.Document{ID: "hr-doc", Subject: "hr", Content: "vacation policy"},
		types.Document{ID: "eng-doc", Subject: "eng", Content: "vacation policy"},
	)

	results, err := f.client.Retrieve(context.Background(), "vacation policy", &duograph.RetrieveOptions{Subject: "hr"})
	require.NoError(t, err)

	require.NotEmpty(t, results.VectorHits)
	for _, hit := range results.VectorHits {
		assert.Equal(t, "hr", hit.Subject)
	}
}

func TestRetrieveLimit(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f,
		types.Document{ID: "a", Subject: "s", Content: "alpha"},
		types.Document{ID: "b", Subject: "s", Content: "beta"},
		types.Document{ID: "c", Subject: "s", Content: "gamma"},
	)

	results, err := f.client.Retrieve(context.Background(), "alpha", &duograph.RetrieveOptions{Limit: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results.VectorHits), 2)
	assert.LessOrEqual(t, len(results.GraphHits), 2)
}

func TestRetrieveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Retrieve(ctx, "   ", nil)
	var validationErr *duograph.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = f.client.Retrieve(ctx, "query", &duograph.RetrieveOptions{Limit: -1})
	assert.ErrorAs(t, err, &validationErr)
}

func TestRetrieveGraphFailureFailsByDefault(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})

	f.graph.failSearch = errors.New("neo4j down")

	_, err := f.client.Retrieve(context.Background(), "vacation", nil)
	var transientErr *duograph.TransientError
	assert.ErrorAs(t, err, &transientErr)
}

func TestRetrieveGraphFailureAllowPartial(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})

	f.graph.failSearch = errors.New("neo4j down")

	allow := true
	results, err := f.client.Retrieve(context.Background(), "vacation", &duograph.RetrieveOptions{AllowPartial: &allow})
	require.NoError(t, err)
	assert.Equal(t, "graph", results.Partial)
	assert.NotEmpty(t, results.VectorHits)
	assert.Empty(t, results.GraphHits)
}

func TestRetrieveVectorFailureAllowPartial(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})

	f.vectors.failSearch = errors.New("pg down")

	allow := true
	results, err := f.client.Retrieve(context.Background(), "doc1", &duograph.RetrieveOptions{AllowPartial: &allow})
	require.NoError(t, err)
	assert.Equal(t, "vector", results.Partial)
	assert.Empty(t, results.VectorHits)
	assert.NotEmpty(t, results.GraphHits)
}

func TestRetrieveBothFailuresError(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})

	f.vectors.failSearch = errors.New("pg down")
	f.graph.failSearch = errors.New("neo4j down")

	allow := true
	_, err := f.client.Retrieve(context.Background(), "vacation", &duograph.RetrieveOptions{AllowPartial: &allow})
	assert.Error(t, err)
}

func TestRetrieveEmbeddingFailureAllowPartial(t *testing.T) {
	f := newFixture(t)
	seedDocuments(t, f, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})

	f.embedder.failWith = errors.New("provider down")

	allow := true
	results, err := f.client.Retrieve(context.Background(), "doc1", &duograph.RetrieveOptions{AllowPartial: &allow})
	require.NoError(t, err)
	assert.Equal(t, "vector", results.Partial)
	assert.NotEmpty(t, results.GraphHits)
}
