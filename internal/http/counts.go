package http

import (
	"context"
	"time"
)

// DocumentCounter reports how many chunks the knowledge base holds.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

const countTimeout = 2 * time.Second

// countDocuments returns the stored chunk count, or -1 if counter is nil
// or the count cannot be read in time.
func countDocuments(ctx context.Context, counter DocumentCounter) int {
	if counter == nil {
		return -1
	}
	ctx, cancel := context.WithTimeout(ctx, countTimeout)
	defer cancel()

	n, err := counter.Count(ctx)
	if err != nil {
		return -1
	}
	return n
}
