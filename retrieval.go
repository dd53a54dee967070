package duograph

import (
	"context"
	"strings"

	"github.com/duograph/duograph/pkg/types"
)

// RetrieveOptions tunes a single hybrid retrieval. A nil options value
// uses the client defaults.
type RetrieveOptions struct {
	// Subject restricts the vector sub-search to documents with this
	// subject. The graph sub-search is unaffected.
	Subject string

	// Limit caps each result collection independently. Zero means the
	// client's default limit.
	Limit int

	// AllowPartial overrides the client's AllowPartialResults setting
	// for this call.
	AllowPartial *bool
}

// Retrieve runs the vector similarity search and the graph property
// search for query and returns both collections labeled by modality. The
// collections are independent: no deduplication and no cross-modality
// score fusion.
//
// When exactly one sub-search fails and partial results are allowed, the
// surviving collection is returned with Partial naming the failed
// modality. Otherwise any sub-search failure fails the retrieval.
func (c *Client) Retrieve(ctx context.Context, query string, opts *RetrieveOptions) (*types.RetrievalResults, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}

	if opts == nil {
		opts = &RetrieveOptions{}
	}
	limit := opts.Limit
	if limit == 0 {
		limit = c.config.defaultLimit()
	}
	if limit < 1 {
		return nil, &ValidationError{Field: "limit", Reason: "must be at least 1"}
	}
	allowPartial := c.config.AllowPartialResults
	if opts.AllowPartial != nil {
		allowPartial = *opts.AllowPartial
	}

	results := &types.RetrievalResults{Query: query}

	queryEmbedding, err := c.embedder.EmbedSingle(ctx, query)
	if err != nil {
		// Without an embedding there is no vector sub-search at all.
		if !allowPartial {
			return nil, &TransientError{Op: "embed query", Err: err}
		}
		c.logger.Warn("query embedding failed, returning graph results only", "error", err)
		results.Partial = "vector"
	}

	var vectorErr error
	if results.Partial == "" {
		results.VectorHits, vectorErr = c.vectors.Search(ctx, queryEmbedding, limit, opts.Subject)
		if vectorErr != nil && !allowPartial {
			return nil, &TransientError{Op: "vector search", Err: vectorErr}
		}
	}

	results.GraphHits, err = c.graph.SearchByProperty(ctx, query, limit)
	if err != nil {
		if !allowPartial || results.Partial != "" || vectorErr != nil {
			// Both modalities failed, or partial results are off.
			return nil, &TransientError{Op: "graph search", Err: err}
		}
		c.logger.Warn("graph search failed, returning vector results only", "error", err)
		results.Partial = "graph"
		results.GraphHits = nil
	}
	if vectorErr != nil {
		c.logger.Warn("vector search failed, returning graph results only", "error", vectorErr)
		results.Partial = "vector"
		results.VectorHits = nil
	}

	c.logger.Debug("retrieval complete",
		"query", query,
		"vector_hits", len(results.VectorHits),
		"graph_hits", len(results.GraphHits),
		"partial", results.Partial)
	return results, nil
}
