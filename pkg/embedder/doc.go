// Package embedder provides text embedding clients for vector
// representations.
//
// The embedding model is treated as an opaque function from text to a
// fixed-length float vector, deterministic for identical input within a
// model version. Two implementations are provided: an OpenAI-compatible
// HTTP client (works against OpenAI or any compatible service via a custom
// base URL) and a local in-process model via go-embedeverything.
//
// Wrappers add retry with exponential backoff and circuit breaking; both
// preserve the Client interface so they compose freely:
//
//	base := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{Model: "all-MiniLM-L6-v2"})
//	client := embedder.NewRetryClient(base, nil)
package embedder
