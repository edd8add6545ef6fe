// Package config provides configuration loading for policybot.
//
// Configuration is assembled from three layers, lowest precedence first:
// hardcoded defaults, an optional YAML file, and environment variables.
// A local .env file can seed the environment before loading (see LoadDotEnv).
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete policybot configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Uploads       UploadsConfig       `koanf:"uploads"`
	OpenAI        OpenAIConfig        `koanf:"openai"`
	Embeddings    EmbeddingsConfig    `koanf:"embeddings"`
	VectorStore   VectorStoreConfig   `koanf:"vectorstore"`
	Retrieval     RetrievalConfig     `koanf:"retrieval"`
	Relevance     RelevanceConfig     `koanf:"relevance"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"http_host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxUploadMB     int           `koanf:"max_upload_mb"`
}

// UploadsConfig controls where uploaded documents are written.
type UploadsConfig struct {
	Dir string `koanf:"dir"`
}

// OpenAIConfig configures the generation backend.
type OpenAIConfig struct {
	APIKey      Secret  `koanf:"api_key"`
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`

	// RateLimit caps generation requests per second. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`
}

// EmbeddingsConfig selects the embedding provider used by the vector store
// and the relevance gate.
type EmbeddingsConfig struct {
	// Provider is "fastembed" (local ONNX) or "openai" (OpenAI-compatible API).
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	CacheDir string `koanf:"cache_dir"`
	// BaseURL is only used by the openai provider.
	BaseURL string `koanf:"base_url"`
}

// VectorStoreConfig selects and configures the vector store.
type VectorStoreConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant".
	Provider        string `koanf:"provider"`
	Collection      string `koanf:"collection"`
	ChromemPath     string `koanf:"chromem_path"`
	ChromemCompress bool   `koanf:"chromem_compress"`
	QdrantHost      string `koanf:"qdrant_host"`
	QdrantPort      int    `koanf:"qdrant_port"`
	QdrantTLS       bool   `koanf:"qdrant_tls"`
}

// RetrievalConfig controls chunking and retrieval.
type RetrievalConfig struct {
	TopK         int `koanf:"top_k"`
	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`

	// Rerank fetches Candidates chunks and keeps the TopK best after
	// keyword reranking.
	Rerank     bool `koanf:"rerank"`
	Candidates int  `koanf:"candidates"`
}

// RelevanceConfig controls the semantic relevance gate.
type RelevanceConfig struct {
	Enabled         bool    `koanf:"enabled"`
	Threshold       float64 `koanf:"threshold"`
	FallbackMessage string  `koanf:"fallback_message"`
}

// ObservabilityConfig holds logging and OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	Endpoint        string `koanf:"endpoint"`
	Protocol        string `koanf:"protocol"`
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
}

// Default relevance gate values.
const (
	DefaultRelevanceThreshold = 0.75
	DefaultFallbackMessage    = "Sorry, I can only answer questions based on HR Policies."
)

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - The OpenAI API key is missing
//   - Provider names are unknown
//   - Retrieval or relevance values are out of range
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Uploads.Dir == "" {
		return errors.New("uploads directory is required")
	}

	if !c.OpenAI.APIKey.IsSet() {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.OpenAI.RateLimit < 0 || c.OpenAI.Burst < 1 {
		return fmt.Errorf("invalid openai rate limit %.2f/s burst %d", c.OpenAI.RateLimit, c.OpenAI.Burst)
	}

	switch c.Embeddings.Provider {
	case "fastembed", "openai":
	default:
		return fmt.Errorf("unknown embeddings provider %q (want fastembed or openai)", c.Embeddings.Provider)
	}

	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("unknown vectorstore provider %q (want chromem or qdrant)", c.VectorStore.Provider)
	}
	if c.VectorStore.Provider == "qdrant" && (c.VectorStore.QdrantPort < 1 || c.VectorStore.QdrantPort > 65535) {
		return fmt.Errorf("invalid qdrant port: %d", c.VectorStore.QdrantPort)
	}

	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.ChunkSize <= 0 {
		return fmt.Errorf("retrieval chunk_size must be positive, got %d", c.Retrieval.ChunkSize)
	}
	if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval chunk_overlap must be in [0, chunk_size), got %d", c.Retrieval.ChunkOverlap)
	}

	if c.Retrieval.Rerank && c.Retrieval.Candidates < c.Retrieval.TopK {
		return fmt.Errorf("retrieval candidates (%d) must be at least top_k (%d)", c.Retrieval.Candidates, c.Retrieval.TopK)
	}

	if c.Relevance.Threshold < -1 || c.Relevance.Threshold > 1 {
		return fmt.Errorf("relevance threshold must be in [-1, 1], got %f", c.Relevance.Threshold)
	}
	if c.Relevance.Enabled && c.Relevance.FallbackMessage == "" {
		return errors.New("relevance fallback message required when the gate is enabled")
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}
