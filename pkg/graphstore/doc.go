// Package graphstore provides the entity-relationship side of the
// knowledge base: a property graph of labeled nodes and typed directed
// edges, with merge (create-or-update) semantics on both.
//
// The production implementation targets Neo4j over bolt. Sessions are
// scoped per call: acquired at the top of each operation and closed on
// every exit path, so no shared connection object leaks across calls.
//
// Property search is a full scan with substring matching; no index is
// assumed. That is acceptable at the current scale but is a known
// scalability caveat, and result ordering beyond store iteration order
// must not be relied on.
package graphstore
