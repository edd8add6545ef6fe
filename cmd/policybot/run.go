package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/policybot/internal/assistant"
	"github.com/fyrsmithlabs/policybot/internal/config"
	"github.com/fyrsmithlabs/policybot/internal/document"
	"github.com/fyrsmithlabs/policybot/internal/embeddings"
	httpserver "github.com/fyrsmithlabs/policybot/internal/http"
	"github.com/fyrsmithlabs/policybot/internal/logging"
	"github.com/fyrsmithlabs/policybot/internal/ragbot"
	"github.com/fyrsmithlabs/policybot/internal/relevance"
	"github.com/fyrsmithlabs/policybot/internal/reranker"
	"github.com/fyrsmithlabs/policybot/internal/telemetry"
	"github.com/fyrsmithlabs/policybot/internal/uploads"
	"github.com/fyrsmithlabs/policybot/internal/vectorstore"
	"go.uber.org/zap"
)

// run starts the policybot server and blocks until ctx is cancelled.
//
// Initialization order:
//  1. .env, then configuration
//  2. Telemetry, then the logger (which may export through it)
//  3. Embedding provider and vector store
//  4. Generator, bot, relevance gate and uploads directory
//  5. HTTP server, with graceful shutdown on cancellation
func run(ctx context.Context, opts *options) error {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	logCfg, err := loggingConfig(cfg)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()
	if st := tel.Status(); st.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("reasons", st.Reasons))
	}

	logger.Info(ctx, "starting policybot",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("embeddings", cfg.Embeddings.Provider),
		zap.String("vectorstore", cfg.VectorStore.Provider),
		zap.Bool("relevance_gate", cfg.Relevance.Enabled),
		logging.Secret("openai_api_key", cfg.OpenAI.APIKey),
	)

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv, err := httpserver.NewServer(deps.assistant, deps.store, logger.Underlying(), &httpserver.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MaxUploadMB: cfg.Server.MaxUploadMB,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info(ctx, "server shutdown complete")
	return nil
}

// dependencies holds everything the HTTP server needs.
type dependencies struct {
	embedder  embeddings.Provider
	store     vectorstore.Store
	assistant *assistant.Service
}

// Close releases the vector store and embedding provider.
func (d *dependencies) Close() {
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.embedder != nil {
		_ = d.embedder.Close()
	}
}

func initDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*dependencies, error) {
	zl := logger.Underlying()
	deps := &dependencies{}

	embedder, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider: cfg.Embeddings.Provider,
		Model:    cfg.Embeddings.Model,
		CacheDir: cfg.Embeddings.CacheDir,
		BaseURL:  cfg.Embeddings.BaseURL,
		APIKey:   cfg.OpenAI.APIKey.Value(),
		Logger:   zl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	deps.embedder = embedder
	logger.Info(ctx, "embedding provider initialized",
		zap.String("model", cfg.Embeddings.Model),
		zap.Int("dimension", embedder.Dimension()),
	)

	store, err := vectorstore.NewStore(cfg, embedder, embedder.Dimension(), zl)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	deps.store = store

	generator, err := ragbot.NewOpenAIGenerator(ragbot.GeneratorConfig{
		APIKey:      cfg.OpenAI.APIKey.Value(),
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		RateLimit:   cfg.OpenAI.RateLimit,
		Burst:       cfg.OpenAI.Burst,
	})
	if err != nil {
		deps.Close()
		return nil, err
	}

	splitter, err := document.NewSplitter(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		deps.Close()
		return nil, err
	}

	var rr reranker.Reranker
	if cfg.Retrieval.Rerank {
		rr = reranker.NewKeywordReranker(reranker.DefaultSimilarityWeight)
	}

	bot, err := ragbot.New(ragbot.Config{
		Loaders:   document.NewLoaders(nil),
		Splitter:  splitter,
		Store:     store,
		Generator: generator,
		TopK:      cfg.Retrieval.TopK,
		Logger:    zl.Named("ragbot"),

		Reranker:   rr,
		Candidates: cfg.Retrieval.Candidates,
	})
	if err != nil {
		deps.Close()
		return nil, err
	}

	receiver, err := uploads.New(ctx, cfg.Uploads.Dir, zl.Named("uploads"))
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to prepare uploads directory: %w", err)
	}

	svcCfg := assistant.Config{
		Receiver: receiver,
		Indexer:  bot,
		Logger:   logger.Named("assistant"),
	}
	if cfg.Relevance.Enabled {
		gate, err := relevance.New(relevance.Config{
			Encoder:   embedder,
			Threshold: cfg.Relevance.Threshold,
			Fallback:  cfg.Relevance.FallbackMessage,
			Logger:    zl.Named("relevance"),
		})
		if err != nil {
			deps.Close()
			return nil, err
		}
		svcCfg.Gate = gate
	}

	svc, err := assistant.New(svcCfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.assistant = svc
	return deps, nil
}

// loggingConfig derives the logger configuration from the observability section.
func loggingConfig(cfg *config.Config) (*logging.Config, error) {
	logCfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.Observability.LogLevel)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	logCfg.Format = strings.ToLower(cfg.Observability.LogFormat)
	logCfg.Output.OTEL = cfg.Observability.EnableTelemetry
	logCfg.Fields["service"] = cfg.Observability.ServiceName
	logCfg.Fields["version"] = version
	if err := logCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	return logCfg, nil
}

// telemetryConfig derives the OpenTelemetry configuration.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Observability.EnableTelemetry
	telCfg.ServiceName = cfg.Observability.ServiceName
	telCfg.ServiceVersion = version
	if cfg.Observability.Endpoint != "" {
		telCfg.Endpoint = cfg.Observability.Endpoint
	}
	if cfg.Observability.Protocol != "" {
		telCfg.Protocol = cfg.Observability.Protocol
	}
	return telCfg
}
