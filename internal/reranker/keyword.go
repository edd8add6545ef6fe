package reranker

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// DefaultSimilarityWeight is the share of the combined score taken from
// vector similarity. The remainder comes from keyword overlap.
const DefaultSimilarityWeight = 0.5

// KeywordReranker blends vector similarity with the share of query terms a
// chunk contains. Policy questions tend to name the exact term the handbook
// uses ("parental leave", "per diem"), which pure embeddings can rank below
// a loosely related paragraph.
type KeywordReranker struct {
	weight float32
}

// NewKeywordReranker returns a KeywordReranker. weight outside (0, 1] falls
// back to DefaultSimilarityWeight.
func NewKeywordReranker(weight float32) *KeywordReranker {
	if weight <= 0 || weight > 1 {
		weight = DefaultSimilarityWeight
	}
	return &KeywordReranker{weight: weight}
}

// Rerank implements Reranker. A query with no meaningful terms keeps the
// similarity order.
func (r *KeywordReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Ranked, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Ranked{}, nil
	}
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}

	terms := tokenize(query)
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		var overlap float32
		if len(terms) > 0 {
			overlap = termOverlap(terms, tokenize(c.Content))
		}
		combined := c.Score
		if len(terms) > 0 {
			combined = r.weight*c.Score + (1-r.weight)*overlap
		}
		ranked[i] = Ranked{
			Candidate:    c,
			Overlap:      overlap,
			Combined:     combined,
			OriginalRank: i,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Combined > ranked[j].Combined
	})
	return ranked[:topK], nil
}

var _ Reranker = (*KeywordReranker)(nil)

// tokenize lowercases text and returns its terms longer than two letters,
// skipping common English stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 && !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

// termOverlap returns the fraction of distinct query terms present in doc.
func termOverlap(query, doc []string) float32 {
	docSet := make(map[string]struct{}, len(doc))
	for _, t := range doc {
		docSet[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(query))
	matched := 0
	for _, t := range query {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := docSet[t]; ok {
			matched++
		}
	}
	return float32(matched) / float32(len(seen))
}

var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"from": true, "was": true, "are": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "you": true, "she": true, "they": true, "what": true,
	"which": true, "who": true, "when": true, "where": true, "why": true,
	"how": true, "our": true, "your": true, "any": true, "all": true,
}
