package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeConfig writes a YAML config file with the given permissions.
func writeConfig(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policybot.yaml")
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	// WriteFile is subject to umask; force the mode under test.
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("failed to chmod config: %v", err)
	}
	return path
}

func TestLoadWithFile_EnvOnly(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}

	if cfg.OpenAI.APIKey.Value() != "sk-env" {
		t.Errorf("OpenAI.APIKey = %q, want sk-env", cfg.OpenAI.APIKey.Value())
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if !cfg.Relevance.Enabled {
		t.Error("Relevance.Enabled = false, want true by default")
	}
}

func TestLoadWithFile_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadWithFile(""); err == nil {
		t.Fatal("LoadWithFile() error = nil, want missing api key error")
	}
}

func TestLoadWithFile_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `server:
  http_port: 8081
  shutdown_timeout: 3s
uploads:
  dir: /tmp/policybot-uploads
relevance:
  enabled: false
  threshold: 0.5
retrieval:
  top_k: 5
`, 0600)

	t.Setenv("OPENAI_API_KEY", "sk-yaml")
	t.Setenv("SERVER_HTTP_PORT", "9091")
	t.Setenv("VECTORSTORE_PROVIDER", "qdrant")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}

	if cfg.Server.Port != 9091 {
		t.Errorf("Server.Port = %d, want 9091 (env overrides yaml)", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Uploads.Dir != "/tmp/policybot-uploads" {
		t.Errorf("Uploads.Dir = %q", cfg.Uploads.Dir)
	}
	if cfg.Relevance.Enabled {
		t.Error("Relevance.Enabled = true, want false from yaml")
	}
	if cfg.Relevance.Threshold != 0.5 {
		t.Errorf("Relevance.Threshold = %v, want 0.5", cfg.Relevance.Threshold)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("Retrieval.TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.VectorStore.Provider != "qdrant" {
		t.Errorf("VectorStore.Provider = %q, want qdrant", cfg.VectorStore.Provider)
	}
	// Untouched values keep their defaults.
	if cfg.VectorStore.QdrantPort != 6334 {
		t.Errorf("VectorStore.QdrantPort = %d, want 6334", cfg.VectorStore.QdrantPort)
	}
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.Uploads.Dir != "uploads" {
		t.Errorf("Uploads.Dir = %q, want uploads", cfg.Uploads.Dir)
	}
}

func TestLoadWithFile_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := writeConfig(t, "server:\n  http_port: 8080\n", 0644)

	if _, err := LoadWithFile(path); err == nil {
		t.Fatal("LoadWithFile() error = nil, want insecure permissions error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("POLICYBOT_DOTENV_PROBE=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("POLICYBOT_DOTENV_PROBE") })

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("POLICYBOT_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("POLICYBOT_DOTENV_PROBE = %q, want from-file", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) error = %v, want nil", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SERVER_HTTP_PORT":     "server.http_port",
		"OPENAI_API_KEY":       "openai.api_key",
		"VECTORSTORE_PROVIDER": "vectorstore.provider",
		"HOME":                 "",
		"PATH_SEPARATOR":       "",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
