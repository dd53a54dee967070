package vectorstore

import (
	"context"

	"github.com/duograph/duograph/pkg/types"
)

// Store is the vector store adapter contract.
type Store interface {
	// Init creates the documents table and the pgvector extension if
	// they do not exist.
	Init(ctx context.Context) error

	// Upsert inserts or fully replaces the row keyed by doc.ID.
	// Repeated calls with identical arguments leave the store in the
	// same state.
	Upsert(ctx context.Context, doc types.Document) error

	// Search returns up to k rows ordered by descending cosine
	// similarity. If subject is non-empty, only rows with that subject
	// are eligible. k must be >= 1.
	Search(ctx context.Context, queryEmbedding []float32, k int, subject string) ([]types.VectorHit, error)

	// Delete removes the row if present and returns the number of rows
	// deleted. A missing id deletes 0 rows and is not an error.
	Delete(ctx context.Context, id string) (int64, error)

	// Close releases the underlying connections.
	Close()
}
