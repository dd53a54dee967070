package graphstore

import (
	"context"
	"errors"
	"regexp"

	"github.com/duograph/duograph/pkg/types"
)

// ErrInvalidIdentifier is returned when a node label or relationship type
// is not a safe Cypher identifier. Labels and relationship types cannot be
// bound as query parameters, so they are validated before interpolation.
var ErrInvalidIdentifier = errors.New("invalid graph identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to interpolate into a Cypher
// query as a label or relationship type.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Store is the graph store adapter contract.
type Store interface {
	// Init creates indexes used by the document queries.
	Init(ctx context.Context) error

	// MergeDocumentNode creates the Document node for id if absent,
	// otherwise updates its subject property, and merges the auxiliary
	// Subject node plus the IS_ABOUT edge between them. Concurrent
	// calls with the same id converge to the last-applied properties.
	MergeDocumentNode(ctx context.Context, id, subject string) error

	// MergeNode creates or updates a node with the given label.
	// properties always gets a "name" entry; node identity is the id
	// property.
	MergeNode(ctx context.Context, node types.GraphNode) error

	// MergeEdge creates the typed directed edge if it does not already
	// exist between the two nodes.
	MergeEdge(ctx context.Context, edge types.GraphEdge) error

	// SearchByProperty substring-matches term against the string form
	// of every property of every node and returns up to limit property
	// maps. Ordering is store iteration order and must not be relied
	// on.
	SearchByProperty(ctx context.Context, term string, limit int) ([]types.GraphHit, error)

	// DeleteNode detaches and deletes the node with the given id along
	// with all incident edges, returning the number of nodes deleted.
	// A missing id deletes 0 nodes and is not an error.
	DeleteNode(ctx context.Context, id string) (int64, error)

	// Close releases the underlying driver.
	Close(ctx context.Context) error
}
