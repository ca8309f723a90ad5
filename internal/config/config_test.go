package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if cfg.Search.DefaultTopK != 5 || cfg.Search.MaxTopK != 100 {
		t.Errorf("Expected top_k defaults 5/100, got %d/%d", cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Addr())
	}
}

func TestOpenAIDimensionDefaults(t *testing.T) {
	cfg := Default()
	cfg.Embedder.Provider = "openai"
	cfg.Embedder.APIKey = "sk-test"
	if cfg.Embedder.Dimension != 0 {
		t.Fatalf("Expected provider default dimension 0, got %d", cfg.Embedder.Dimension)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default openai model to validate, got %v", err)
	}

	cfg.Embedder.Model = "text-embedding-ada-002"
	cfg.Embedder.Dimension = 1536
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected explicit dimension to validate, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("SONGSEARCH_PORT", "")
	t.Setenv("SONGSEARCH_DB_PATH", "")
	t.Setenv("SONGSEARCH_EMBED_PROVIDER", "")

	path := filepath.Join(t.TempDir(), "songsearch.yaml")
	content := `
server:
  port: 9000
  request_timeout: 5s
  allowed_origins: ["http://localhost:3000"]
storage:
  db_path: /tmp/catalog.sqlite3
embedder:
  provider: hash
  dimension: 128
search:
  max_top_k: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.Server.RequestTimeout)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Storage.DBPath != "/tmp/catalog.sqlite3" {
		t.Errorf("Expected db path from file, got %s", cfg.Storage.DBPath)
	}
	if cfg.Embedder.Dimension != 128 {
		t.Errorf("Expected dimension 128, got %d", cfg.Embedder.Dimension)
	}
	if cfg.Search.MaxTopK != 20 || cfg.Search.DefaultTopK != 5 {
		t.Errorf("Expected max 20 and default 5, got %d/%d", cfg.Search.MaxTopK, cfg.Search.DefaultTopK)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("server: [unclosed"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"SONGSEARCH_DB_PATH":        "/data/songs.db",
		"SONGSEARCH_PORT":           "8443",
		"SONGSEARCH_EMBED_PROVIDER": "openai",
		"OPENAI_API_KEY":            "sk-fallback",
		"SONGSEARCH_REDIS_ADDR":     "localhost:6379",
		"LOG_LEVEL":                 "debug",
		"NO_COLOR":                  "1",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Storage.DBPath != "/data/songs.db" {
		t.Errorf("Expected db path override, got %s", cfg.Storage.DBPath)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("Expected port 8443, got %d", cfg.Server.Port)
	}
	if cfg.Embedder.Provider != "openai" || cfg.Embedder.APIKey != "sk-fallback" {
		t.Errorf("Expected openai with fallback key, got %s/%s", cfg.Embedder.Provider, cfg.Embedder.APIKey)
	}
	if cfg.Cache.Addr != "localhost:6379" {
		t.Errorf("Expected redis addr, got %s", cfg.Cache.Addr)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Color {
		t.Errorf("Expected debug without color, got %s/%v", cfg.Logging.Level, cfg.Logging.Color)
	}
}

func TestApplyEnvKeyPrecedence(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		"OPENAI_API_KEY":           "sk-generic",
		"SONGSEARCH_EMBED_API_KEY": "sk-specific",
	}))
	if cfg.Embedder.APIKey != "sk-specific" {
		t.Errorf("Expected SONGSEARCH_EMBED_API_KEY to win, got %s", cfg.Embedder.APIKey)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(envMap(map[string]string{"SONGSEARCH_PORT": "eighty"})); err == nil {
		t.Error("Expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"db path", func(c *Config) { c.Storage.DBPath = " " }, "storage.db_path"},
		{"provider", func(c *Config) { c.Embedder.Provider = "word2vec" }, "embedder.provider"},
		{"openai key", func(c *Config) { c.Embedder.Provider = "openai" }, "embedder.api_key"},
		{"fixed-size model dimension", func(c *Config) {
			c.Embedder.Provider = "openai"
			c.Embedder.APIKey = "sk-test"
			c.Embedder.Model = "text-embedding-ada-002"
		}, "embedder.dimension is required"},
		{"default top_k", func(c *Config) { c.Search.DefaultTopK = 0 }, "default_top_k"},
		{"max below default", func(c *Config) { c.Search.MaxTopK = 2 }, "max_top_k"},
		{"timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "request_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
