// Package reranker reorders retrieved chunks before they are handed to the
// generator.
package reranker

import "context"

// Candidate is a retrieved chunk with its vector similarity.
type Candidate struct {
	ID      string
	Content string
	Score   float32
}

// Ranked is a candidate after reranking.
type Ranked struct {
	Candidate

	// Overlap is the share of query terms found in the content (0.0-1.0).
	Overlap float32

	// Combined is the score the ranking was sorted by.
	Combined float32

	// OriginalRank is the candidate's position in the input (0-indexed).
	OriginalRank int
}

// Reranker reorders candidates for a query and keeps the best topK.
type Reranker interface {
	// Rerank returns at most topK candidates sorted by descending relevance.
	// topK <= 0 keeps every candidate.
	Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Ranked, error)
}
