package duograph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/journal"
	"github.com/duograph/duograph/pkg/notify"
	"github.com/duograph/duograph/pkg/types"
)

type testFixture struct {
	client   *duograph.Client
	vectors  *fakeVectorStore
	graph    *fakeGraphStore
	embedder *fakeEmbedder
	journal  *journal.Journal
	notifier *captureNotifier
	alerter  *captureAlerter
}

func newFixture(t *testing.T, opts ...duograph.Option) *testFixture {
	t.Helper()

	f := &testFixture{
		vectors:  newFakeVectorStore(),
		graph:    newFakeGraphStore(),
		embedder: &fakeEmbedder{},
		notifier: &captureNotifier{},
		alerter:  &captureAlerter{},
	}

	jnl, err := journal.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { jnl.Close() })
	f.journal = jnl

	all := append([]duograph.Option{
		duograph.WithJournal(jnl),
		duograph.WithNotifier(f.notifier),
		duograph.WithAlerter(f.alerter),
	}, opts...)

	client, err := duograph.NewClient(f.vectors, f.graph, f.embedder, duograph.Config{}, nil, all...)
	require.NoError(t, err)
	f.client = client
	return f
}

func TestAddDocumentWritesBothStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.client.AddDocument(ctx, types.Document{
		ID:      "doc1",
		Subject: "hr",
		Content: "vacation policy",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc1", result.ID)
	assert.Equal(t, "hr", result.Subject)
	assert.Equal(t, fakeDimensions, result.Dimensions)

	assert.True(t, f.vectors.has("doc1"))
	assert.True(t, f.graph.has("doc1"))

	// A clean ingest leaves no journal entry behind.
	pending, err := f.client.PendingRepairs()
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Len(t, f.notifier.byType(notify.EventDocumentIngested), 1)
}

func TestAddDocumentIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"}
	_, err := f.client.AddDocument(ctx, doc)
	require.NoError(t, err)
	_, err = f.client.AddDocument(ctx, doc)
	require.NoError(t, err)

	assert.Len(t, f.vectors.docs, 1)
	assert.Len(t, f.graph.nodes, 1)
	assert.Equal(t, "vacation policy", f.vectors.docs["doc1"].Content)
}

func TestAddDocumentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  types.Document
	}{
		{"empty id", types.Document{Subject: "hr", Content: "text"}},
		{"empty subject", types.Document{ID: "doc1", Content: "text"}},
		{"empty content", types.Document{ID: "doc1", Subject: "hr"}},
		{"whitespace id", types.Document{ID: "   ", Subject: "hr", Content: "text"}},
		{"path separator in id", types.Document{ID: "a/b", Subject: "hr", Content: "text"}},
		{"traversal in id", types.Document{ID: "..secret", Subject: "hr", Content: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.client.AddDocument(ctx, tt.doc)
			var validationErr *duograph.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// Nothing was written on any validation failure.
	assert.Empty(t, f.vectors.docs)
	assert.Empty(t, f.graph.nodes)
}

func TestAddDocumentVectorStageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.vectors.failUpsert = errors.New("connection refused")

	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "text"})
	var ingestErr *duograph.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, duograph.StageVector, ingestErr.Stage)
	assert.False(t, ingestErr.VectorCommitted)

	// The graph stage never ran.
	assert.Equal(t, 0, f.graph.mergeCalls)
}

func TestAddDocumentPartialFailureVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.graph.failMerge = errors.New("neo4j unavailable")

	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})
	var ingestErr *duograph.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "doc1", ingestErr.DocumentID)
	assert.Equal(t, duograph.StageGraph, ingestErr.Stage)
	assert.True(t, ingestErr.VectorCommitted)

	// The vector row is never rolled back and stays retrievable.
	assert.True(t, f.vectors.has("doc1"))
	hits, err := f.vectors.Search(ctx, mustEmbed(t, f.embedder, "vacation policy"), 5, "")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "doc1", hits[0].ID)

	// The failure is journaled for repair and surfaced to operators.
	entry, err := f.journal.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, journal.StagePartialFailure, entry.Stage)

	assert.Len(t, f.notifier.byType(notify.EventIngestPartialFailure), 1)
	assert.NotEmpty(t, f.alerter.subjects)
}

func TestRepairDocumentRetriesGraphStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.graph.failMerge = errors.New("neo4j unavailable")
	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "text"})
	require.Error(t, err)

	f.graph.failMerge = nil
	require.NoError(t, f.client.RepairDocument(ctx, "doc1"))

	assert.True(t, f.graph.has("doc1"))
	assert.Equal(t, "hr", f.graph.nodes["doc1"]["subject"])

	pending, err := f.client.PendingRepairs()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRepairDocumentSkipsFailedAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.vectors.failUpsert = errors.New("connection refused")
	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "text"})
	require.Error(t, err)

	f.vectors.failUpsert = nil
	require.NoError(t, f.client.RepairDocument(ctx, "doc1"))

	// Neither stage committed, so repair must not write the graph node.
	assert.False(t, f.vectors.has("doc1"))
	assert.False(t, f.graph.has("doc1"))
	assert.Equal(t, 0, f.graph.mergeCalls)

	// The dead entry is cleared rather than left pending forever.
	pending, err := f.client.PendingRepairs()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRepairDocumentSkipsFailedEmbedding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.embedder.failWith = errors.New("model unavailable")
	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "text"})
	require.Error(t, err)

	f.embedder.failWith = nil
	require.NoError(t, f.client.RepairDocument(ctx, "doc1"))
	assert.False(t, f.graph.has("doc1"))
	assert.Equal(t, 0, f.graph.mergeCalls)
}

func TestRepairDocumentUnknownID(t *testing.T) {
	f := newFixture(t)
	err := f.client.RepairDocument(context.Background(), "ghost")
	assert.ErrorIs(t, err, duograph.ErrNotFound)
}

func TestDeleteDocumentIsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "vacation policy"})
	require.NoError(t, err)

	result, err := f.client.DeleteDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.VectorDeleted)
	assert.Equal(t, int64(1), result.GraphDeleted)
	assert.True(t, result.Found())

	// Neither store returns the document afterwards.
	hits, err := f.vectors.Search(ctx, mustEmbed(t, f.embedder, "vacation policy"), 5, "")
	require.NoError(t, err)
	for _, hit := range hits {
		assert.NotEqual(t, "doc1", hit.ID)
	}
	graphHits, err := f.graph.SearchByProperty(ctx, "doc1", 5)
	require.NoError(t, err)
	assert.Empty(t, graphHits)

	assert.Len(t, f.notifier.byType(notify.EventDocumentRemoved), 1)
}

func TestDeleteUnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)

	result, err := f.client.DeleteDocument(context.Background(), "never-ingested")
	assert.ErrorIs(t, err, duograph.ErrNotFound)
	require.NotNil(t, result)
	assert.False(t, result.Found())

	// Both stores were still consulted.
	assert.Equal(t, 1, f.vectors.deleteCalls)
	assert.Equal(t, 1, f.graph.deleteCalls)
}

func TestDeleteAttemptsBothSidesOnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "text"})
	require.NoError(t, err)

	f.vectors.failDelete = errors.New("pg down")

	_, err = f.client.DeleteDocument(ctx, "doc1")
	var transientErr *duograph.TransientError
	require.ErrorAs(t, err, &transientErr)

	// The graph deletion still happened despite the vector failure.
	assert.False(t, f.graph.has("doc1"))

	// One side deleted, the other unknown: kept for repair.
	entry, err := f.journal.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, journal.StagePartialFailure, entry.Stage)
}

func TestDeleteValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.DeleteDocument(context.Background(), "  ")
	var validationErr *duograph.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestClosedClientRejectsOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.client.Close(ctx))

	_, err := f.client.AddDocument(ctx, types.Document{ID: "doc1", Subject: "hr", Content: "text"})
	assert.ErrorIs(t, err, duograph.ErrClosed)
	_, err = f.client.DeleteDocument(ctx, "doc1")
	assert.ErrorIs(t, err, duograph.ErrClosed)
	_, err = f.client.Retrieve(ctx, "query", nil)
	assert.ErrorIs(t, err, duograph.ErrClosed)

	// Close is idempotent.
	assert.NoError(t, f.client.Close(ctx))
}

func mustEmbed(t *testing.T, e *fakeEmbedder, text string) []float32 {
	t.Helper()
	vec, err := e.EmbedSingle(context.Background(), text)
	require.NoError(t, err)
	return vec
}
