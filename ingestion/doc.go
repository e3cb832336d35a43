// Package ingestion loads catalog candidates into a repository and attaches
// chunk embeddings to them.
//
// Embedding runs in batches on an ants worker pool. A batch that still
// fails after its retries is logged and skipped; those candidates stay in
// the pool without a vector and are simply invisible to FindSimilar.
package ingestion
