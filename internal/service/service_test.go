package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/SongSearch/internal/config"
	"github.com/himanishpuri/SongSearch/pkg/logger"
	"github.com/himanishpuri/SongSearch/pkg/songsearch"
	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "songs.sqlite3")
	cfg.Embedder.Dimension = 32
	return cfg
}

func TestNewBuildsWorkingService(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	svc, err := New(ctx, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer svc.Close()

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Dimension != 32 || stats.Model != "hash-fnv1a-32" {
		t.Errorf("Expected hash-fnv1a-32 at dim 32, got %s at %d", stats.Model, stats.Dimension)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	svc, err := New(ctx, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer svc.Close()

	n, err := Seed(ctx, svc, logger.Discard())
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if n != len(songsearch.SampleSongs()) {
		t.Errorf("Expected %d seeded songs, got %d", len(songsearch.SampleSongs()), n)
	}

	n, err = Seed(ctx, svc, logger.Discard())
	if err != nil {
		t.Fatalf("Second Seed failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected reseed to add nothing, got %d", n)
	}
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedder.Provider = "word2vec"
	if _, err := NewEmbedder(context.Background(), cfg, logger.Discard()); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewEmbedderOpenAI(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedder.Provider = "openai"
	cfg.Embedder.APIKey = "sk-test"
	cfg.Embedder.Model = embed.ModelMiniLM
	cfg.Embedder.Dimension = 384

	emb, err := NewEmbedder(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}
	if emb.Model() != embed.ModelMiniLM || emb.Dimension() != 384 {
		t.Errorf("Expected %s at 384, got %s at %d", embed.ModelMiniLM, emb.Model(), emb.Dimension())
	}
}

func TestNewEmbedderProviderDefaultDimension(t *testing.T) {
	tests := []struct {
		provider string
		wantDim  int
	}{
		{"hash", 384},
		{"openai", 1536},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.Default()
			cfg.Embedder.Provider = tt.provider
			cfg.Embedder.APIKey = "sk-test"

			emb, err := NewEmbedder(context.Background(), cfg, logger.Discard())
			if err != nil {
				t.Fatalf("NewEmbedder failed: %v", err)
			}
			if emb.Dimension() != tt.wantDim {
				t.Errorf("Expected dimension %d, got %d", tt.wantDim, emb.Dimension())
			}
		})
	}
}

func TestNewEmbedderSkipsUnreachableCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Addr = "127.0.0.1:1"

	emb, err := NewEmbedder(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}
	if _, ok := emb.(*embed.Cached); ok {
		t.Error("Expected plain embedder when redis is unreachable")
	}
}

func TestConfigureLogger(t *testing.T) {
	log := ConfigureLogger(config.LoggingConfig{Level: "error", Color: false})
	defer log.SetLevel(logger.INFO)
	if log.Level() != logger.ERROR {
		t.Errorf("Expected ERROR level, got %v", log.Level())
	}
}
