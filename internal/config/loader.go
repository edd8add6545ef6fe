package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment. Variables already present in the environment win.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadWithFile loads configuration from an optional YAML file, then overrides
// with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_HTTP_PORT, OPENAI_API_KEY, etc.)
//  2. YAML config file (configPath, skipped when empty or absent)
//  3. Hardcoded defaults
//
// Environment variables are lowercased and split on the first underscore:
//
//	SERVER_HTTP_PORT      -> server.http_port
//	OPENAI_API_KEY        -> openai.api_key
//	RELEVANCE_THRESHOLD   -> relevance.threshold
//	VECTORSTORE_PROVIDER  -> vectorstore.provider
//
// The YAML file must have 0600 or 0400 permissions and be at most 1MB.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := loadYAML(k, configPath); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envSections lists the top-level config keys environment variables may set.
var envSections = map[string]bool{
	"server":        true,
	"uploads":       true,
	"openai":        true,
	"embeddings":    true,
	"vectorstore":   true,
	"retrieval":     true,
	"relevance":     true,
	"observability": true,
}

// envKey maps an environment variable name to a config key. Variables
// outside the known sections map to "" and are skipped by koanf.
func envKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !envSections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func loadYAML(k *koanf.Koanf, configPath string) error {
	f, err := os.Open(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	// Validate using the open descriptor to avoid a TOCTOU race.
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return nil
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// defaults returns the configuration used when neither file nor environment
// sets a value.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadMB:     32,
		},
		Uploads: UploadsConfig{
			Dir: "uploads",
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0,
			Burst:       1,
		},
		Embeddings: EmbeddingsConfig{
			Provider: "fastembed",
			Model:    "sentence-transformers/all-MiniLM-L6-v2",
			CacheDir: "local_cache",
		},
		VectorStore: VectorStoreConfig{
			Provider:    "chromem",
			Collection:  "policybot_docs",
			ChromemPath: "data/vectorstore",
			QdrantHost:  "localhost",
			QdrantPort:  6334,
		},
		Retrieval: RetrievalConfig{
			TopK:         3,
			ChunkSize:    1000,
			ChunkOverlap: 100,
			Candidates:   10,
		},
		Relevance: RelevanceConfig{
			Enabled:         true,
			Threshold:       DefaultRelevanceThreshold,
			FallbackMessage: DefaultFallbackMessage,
		},
		Observability: ObservabilityConfig{
			ServiceName: "policybot",
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			LogLevel:    "info",
			LogFormat:   "json",
		},
	}
}
