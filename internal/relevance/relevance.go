// Package relevance decides whether a generated answer stays on topic by
// comparing the embeddings of the question and the answer.
package relevance

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("policybot.relevance")

// Defaults used when Config leaves a field unset.
const (
	DefaultThreshold = 0.75
	DefaultFallback  = "Sorry, I can only answer questions based on HR Policies."
)

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimensions differ")

// Encoder embeds texts symmetrically, with no query or passage prefix.
type Encoder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Verdict is the outcome of one evaluation.
type Verdict struct {
	Score    float64
	Relevant bool
}

// Config configures a Gate.
type Config struct {
	Encoder   Encoder
	Threshold float64
	Fallback  string
	Logger    *zap.Logger
}

// Gate scores answers against their questions.
type Gate struct {
	encoder   Encoder
	threshold float64
	fallback  string
	logger    *zap.Logger
}

// New creates a Gate. A zero Threshold means DefaultThreshold and an empty
// Fallback means DefaultFallback.
func New(cfg Config) (*Gate, error) {
	if cfg.Encoder == nil {
		return nil, errors.New("relevance: encoder is required")
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Threshold < -1 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("relevance: threshold %f outside [-1, 1]", cfg.Threshold)
	}
	if cfg.Fallback == "" {
		cfg.Fallback = DefaultFallback
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Gate{
		encoder:   cfg.Encoder,
		threshold: cfg.Threshold,
		fallback:  cfg.Fallback,
		logger:    cfg.Logger,
	}, nil
}

// Threshold returns the minimum score an answer needs to pass.
func (g *Gate) Threshold() float64 { return g.threshold }

// Fallback returns the message that replaces a rejected answer.
func (g *Gate) Fallback() string { return g.fallback }

// Evaluate embeds question and answer in one batch and compares them.
// The answer is relevant when the score reaches the threshold.
func (g *Gate) Evaluate(ctx context.Context, question, answer string) (Verdict, error) {
	ctx, span := tracer.Start(ctx, "Gate.Evaluate")
	defer span.End()

	vecs, err := g.encoder.Embed(ctx, []string{question, answer})
	if err != nil {
		span.RecordError(err)
		return Verdict{}, fmt.Errorf("embedding question and answer: %w", err)
	}
	if len(vecs) != 2 {
		return Verdict{}, fmt.Errorf("embedding question and answer: got %d vectors, want 2", len(vecs))
	}

	score, err := Cosine(vecs[0], vecs[1])
	if err != nil {
		return Verdict{}, err
	}
	v := Verdict{Score: score, Relevant: score >= g.threshold}
	span.SetAttributes(attribute.Float64("score", v.Score), attribute.Bool("relevant", v.Relevant))

	g.logger.Debug("relevance evaluated",
		zap.Float64("score", v.Score),
		zap.Float64("threshold", g.threshold),
		zap.Bool("relevant", v.Relevant),
	)
	return v, nil
}

// Cosine returns the cosine similarity of a and b. A zero vector has no
// direction, so its similarity to anything is 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
