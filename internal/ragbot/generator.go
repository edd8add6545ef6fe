package ragbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorConfig configures the OpenAI chat generator.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	Temperature float64

	// RateLimit is the request rate in calls per second. Zero means unlimited.
	RateLimit float64
	Burst     int
}

// OpenAIGenerator generates answers with an OpenAI-compatible chat model.
type OpenAIGenerator struct {
	llm         llms.Model
	temperature float64
	limiter     *rate.Limiter
}

// NewOpenAIGenerator creates a generator backed by langchaingo's OpenAI client.
func NewOpenAIGenerator(cfg GeneratorConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key required")
	}
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return newGenerator(llm, cfg), nil
}

func newGenerator(llm llms.Model, cfg GeneratorConfig) *OpenAIGenerator {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &OpenAIGenerator{
		llm:         llm,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// Generate sends prompt as a single user message and returns the reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return out, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
