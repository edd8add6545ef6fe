// Package vectorstore stores document chunks with their embeddings and
// answers similarity searches over them.
//
// Two backends implement Store:
//
//   - ChromemStore wraps the embedded chromem-go database. With a Path it
//     persists to disk; without one it is in-memory, which tests rely on.
//   - QdrantStore talks to an external Qdrant server over gRPC, retrying
//     transient failures with exponential backoff.
//
// Both backends embed content through the Embedder interface, which the
// embeddings package satisfies. Document IDs are caller supplied so that
// re-ingesting the same chunk replaces rather than duplicates it; Exists
// lets callers skip work for chunks already stored.
//
// Operation counts and latencies are exported as Prometheus metrics under
// the policybot_vectorstore_ prefix.
package vectorstore
