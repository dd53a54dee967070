// Package vectorstore provides the embedding-similarity side of the
// knowledge base: a logical documents table keyed by document ID with a
// fixed-dimension embedding column.
//
// The production implementation is PostgreSQL with the pgvector extension,
// accessed through a pgx connection pool. Similarity is cosine: the store
// computes score = 1 - (embedding <=> query) and reports it rounded to 4
// decimal places.
//
// Connection failures are surfaced, not retried; retry policy belongs to
// the lifecycle coordinator's caller.
package vectorstore
