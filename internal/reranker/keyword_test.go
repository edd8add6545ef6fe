package reranker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordReranker_PromotesTermMatches(t *testing.T) {
	r := NewKeywordReranker(0.5)
	candidates := []Candidate{
		{ID: "a", Content: "Employees may work remotely two days a week.", Score: 0.80},
		{ID: "b", Content: "Parental leave is sixteen weeks at full pay.", Score: 0.70},
		{ID: "c", Content: "Badges must be worn on site.", Score: 0.60},
	}

	ranked, err := r.Rerank(context.Background(), "parental leave?", candidates, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, 1, ranked[0].OriginalRank)
	assert.InDelta(t, 1.0, ranked[0].Overlap, 1e-6)
	assert.InDelta(t, 0.85, ranked[0].Combined, 1e-6)
	assert.Equal(t, "a", ranked[1].ID)
}

func TestKeywordReranker_NoTermsKeepsSimilarityOrder(t *testing.T) {
	r := NewKeywordReranker(0)
	candidates := []Candidate{
		{ID: "a", Content: "first", Score: 0.9},
		{ID: "b", Content: "second", Score: 0.5},
	}

	ranked, err := r.Rerank(context.Background(), "is it?", candidates, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ID)
	assert.InDelta(t, 0.9, ranked[0].Combined, 1e-6)
}

func TestKeywordReranker_Empty(t *testing.T) {
	ranked, err := NewKeywordReranker(0.5).Rerank(context.Background(), "leave", nil, 3)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestKeywordReranker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewKeywordReranker(0.5).Rerank(ctx, "leave", []Candidate{{ID: "a"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"parental", "leave", "policy", "2024"},
		tokenize("What is the Parental-Leave policy (2024)?"))
}
