package types

import "time"

// Document is the logical unit of knowledge. The same ID keys at most one
// row in the vector store and at most one node in the graph store.
type Document struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// VectorHit is a single similarity-search result from the vector store.
// Score is cosine similarity (1 - cosine distance), rounded to 4 decimals.
type VectorHit struct {
	ID      string  `json:"id"`
	Subject string  `json:"subject"`
	Content string  `json:"content"`
	Score   float64 `json:"similarity_score"`
}

// GraphNode is a property-graph node. Label is a type tag such as
// "Document" or "Subject"; Properties always carries a "name" entry.
type GraphNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

// GraphEdge is a directed, typed relationship between two nodes. Type is an
// uppercase relation name such as IS_ABOUT. Edges have no uniqueness
// constraint; the graph store's merge semantics tolerate duplicates.
type GraphEdge struct {
	SourceID string `json:"source"`
	Type     string `json:"type"`
	TargetID string `json:"target"`
}

// GraphHit is the property map of a node matched by a graph property
// search. The keys are the node's stored properties.
type GraphHit map[string]any

// RetrievalResults carries the two result collections of a hybrid
// retrieval. The collections are deliberately not deduplicated or
// score-fused against each other: vector hits are semantic-similarity
// evidence, graph hits are lexical entity evidence, and synthesis is the
// caller's job.
type RetrievalResults struct {
	Query      string      `json:"query"`
	VectorHits []VectorHit `json:"vector_hits"`
	GraphHits  []GraphHit  `json:"graph_hits"`

	// Partial names the modality that failed ("vector" or "graph") when
	// the coordinator was configured to tolerate partial results. Empty
	// when both sub-searches succeeded.
	Partial string `json:"partial,omitempty"`
}

// DeleteResult reports the outcome of a document deletion across both
// stores.
type DeleteResult struct {
	ID            string `json:"id"`
	VectorDeleted int64  `json:"vector_deleted"`
	GraphDeleted  int64  `json:"graph_deleted"`
}

// Found reports whether either store held the document.
func (r DeleteResult) Found() bool {
	return r.VectorDeleted > 0 || r.GraphDeleted > 0
}

// IngestResult reports a completed document ingestion.
type IngestResult struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Dimensions int       `json:"dimensions"`
	IngestedAt time.Time `json:"ingested_at"`
}

// contextKey is a private type for context values to avoid collisions.
type contextKey string

// Context keys used by the HTTP layer and the audit trail.
const (
	ContextKeyRequestID     contextKey = "request_id"
	ContextKeyRequestSource contextKey = "request_source"
)
