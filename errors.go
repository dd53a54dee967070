package duograph

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the coordinators.
var (
	// ErrNotFound is returned when a delete or lookup target is absent
	// from both stores. It is a normal outcome, not a failure.
	ErrNotFound = errors.New("document not found")

	// ErrClosed is returned when an operation is attempted on a closed
	// client.
	ErrClosed = errors.New("client is closed")
)

// IngestStage identifies the saga step at which an ingestion failed.
type IngestStage string

const (
	StageEmbedding IngestStage = "embedding"
	StageVector    IngestStage = "vector"
	StageGraph     IngestStage = "graph"
)

// IngestError reports a failed document ingestion. When VectorCommitted is
// true the vector row was written but the graph merge failed, leaving the
// document in a partial-failure state that needs a retry of the graph stage
// or operator attention. The vector row is never rolled back: a concurrent
// reader may already have observed it.
type IngestError struct {
	DocumentID      string
	Stage           IngestStage
	VectorCommitted bool
	Err             error
}

func (e *IngestError) Error() string {
	if e.VectorCommitted {
		return fmt.Sprintf("ingest %s: %s stage failed (vector committed): %v", e.DocumentID, e.Stage, e.Err)
	}
	return fmt.Sprintf("ingest %s: %s stage failed: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Is implements errors.Is support for IngestError.
func (e *IngestError) Is(target error) bool {
	_, ok := target.(*IngestError)
	return ok
}

// TransientError wraps a connection or timeout failure from a backing
// store or the embedding provider. Callers may retry; the coordinators do
// not retry internally.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Is implements errors.Is support for TransientError.
func (e *TransientError) Is(target error) bool {
	_, ok := target.(*TransientError)
	return ok
}

// ValidationError reports malformed caller input (id, subject, limit).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is implements errors.Is support for ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// IsDeadlineExceeded reports whether err is (or wraps) a context deadline
// expiry, in either raw or TransientError-wrapped form.
func IsDeadlineExceeded(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
