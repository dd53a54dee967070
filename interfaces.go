package duograph

import (
	"context"

	"github.com/duograph/duograph/pkg/journal"
	"github.com/duograph/duograph/pkg/types"
)

// DocumentManager covers the document lifecycle operations.
type DocumentManager interface {
	// AddDocument ingests a document into both stores, embedding the
	// content when no embedding is supplied.
	AddDocument(ctx context.Context, doc types.Document) (*types.IngestResult, error)

	// DeleteDocument removes a document from both stores. A document
	// absent from both yields ErrNotFound.
	DeleteDocument(ctx context.Context, id string) (*types.DeleteResult, error)
}

// Retriever covers hybrid retrieval.
type Retriever interface {
	// Retrieve runs the vector and graph sub-searches for query and
	// returns both result collections.
	Retrieve(ctx context.Context, query string, opts *RetrieveOptions) (*types.RetrievalResults, error)
}

// RepairManager exposes the journal of unresolved lifecycle operations
// and the graph-stage retry for partial failures.
type RepairManager interface {
	// PendingRepairs lists journal entries that never reached a
	// terminal stage.
	PendingRepairs() ([]journal.Entry, error)

	// RepairDocument retries the graph stage for a document stuck in a
	// partial-failure state.
	RepairDocument(ctx context.Context, id string) error
}

// Duograph is the full client contract.
type Duograph interface {
	DocumentManager
	Retriever
	RepairManager

	Close(ctx context.Context) error
}

var _ Duograph = (*Client)(nil)
