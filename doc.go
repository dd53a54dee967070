// Package duograph coordinates a hybrid knowledge base kept in two
// specialized stores: a PostgreSQL/pgvector store for semantic similarity
// search and a Neo4j property graph for entity structure. The package
// keeps the two stores in step for every document lifecycle operation and
// serves hybrid retrievals that return both modalities side by side.
//
// The stores cannot share a transaction, so ingestion runs as an ordered
// saga (vector first, then graph) journaled to a local badger database.
// A graph-stage failure after the vector write leaves the document in a
// visible partial-failure state rather than rolling back a row a reader
// may already have seen; RepairDocument retries the graph stage.
//
// Retrieval never fuses the two result sets. Vector hits carry cosine
// similarity scores, graph hits carry raw node property maps, and
// ranking or synthesis across modalities is the caller's job.
package duograph
