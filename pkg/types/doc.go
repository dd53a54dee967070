// Package types defines the shared data model for duograph: documents,
// graph nodes and edges, and the result shapes returned by retrieval.
//
// A Document is the logical unit of knowledge. It is replicated as one
// vector-store row and one graph-store node sharing the same ID; keeping
// those two representations in step is the job of the lifecycle
// coordinator in the root package.
package types
