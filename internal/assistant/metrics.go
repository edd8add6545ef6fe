package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// uploadsTotal counts upload attempts.
	// Labels: result (success, invalid, error)
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policybot",
			Subsystem: "assistant",
			Name:      "uploads_total",
			Help:      "Total number of document uploads by result",
		},
		[]string{"result"},
	)

	// queriesTotal counts questions.
	// Labels: result (answered, gated, invalid, error)
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policybot",
			Subsystem: "assistant",
			Name:      "queries_total",
			Help:      "Total number of questions by result",
		},
		[]string{"result"},
	)

	relevanceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "policybot",
			Subsystem: "assistant",
			Name:      "relevance_score",
			Help:      "Cosine similarity between question and answer",
			Buckets:   []float64{0, 0.25, 0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1},
		},
	)
)
