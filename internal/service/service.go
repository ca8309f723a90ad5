// Package service assembles a songsearch.Service from process configuration.
// It is shared by the HTTP server and the CLI.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/himanishpuri/SongSearch/internal/config"
	"github.com/himanishpuri/SongSearch/pkg/logger"
	"github.com/himanishpuri/SongSearch/pkg/songsearch"
	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
)

const redisPingTimeout = 2 * time.Second

// ConfigureLogger applies the logging section to the process-wide logger.
func ConfigureLogger(cfg config.LoggingConfig) *logger.Logger {
	log := logger.GetLogger()
	log.SetLevel(logger.ParseLevel(cfg.Level))
	log.SetColorize(cfg.Color)
	return log
}

// New builds the embedder, optional cache and sqlite-backed service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (songsearch.Service, error) {
	emb, err := NewEmbedder(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := songsearch.NewService(
		songsearch.WithDBPath(cfg.Storage.DBPath),
		songsearch.WithEmbedder(emb),
		songsearch.WithEmbedConcurrency(cfg.Embedder.Concurrency),
		songsearch.WithDefaultTopK(cfg.Search.DefaultTopK),
		songsearch.WithMaxTopK(cfg.Search.MaxTopK),
		songsearch.WithLogger(log.Named("songsearch")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

// NewEmbedder constructs the configured provider and, when a Redis address
// is configured and reachable, wraps it in the embedding cache.
func NewEmbedder(ctx context.Context, cfg *config.Config, log *logger.Logger) (embed.Embedder, error) {
	ec := cfg.Embedder

	var opts []embed.Option
	if ec.Model != "" {
		opts = append(opts, embed.WithModel(ec.Model))
	}
	if ec.Dimension > 0 {
		opts = append(opts, embed.WithDimension(ec.Dimension))
	}
	if ec.BaseURL != "" {
		opts = append(opts, embed.WithBaseURL(ec.BaseURL))
	}

	emb, err := embed.New(ec.Provider, ec.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	if cfg.Cache.Addr == "" {
		return emb, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnf("Embedding cache disabled, redis at %s unreachable: %v", cfg.Cache.Addr, err)
		client.Close()
		return emb, nil
	}

	log.Infof("Embedding cache enabled at %s (ttl=%s)", cfg.Cache.Addr, cfg.Cache.TTL)
	return embed.NewCached(emb, client,
		embed.WithCacheTTL(cfg.Cache.TTL),
		embed.WithKeyPrefix(cfg.Cache.Prefix),
	), nil
}

// Seed inserts the demo catalog, skipping records that already exist.
func Seed(ctx context.Context, svc songsearch.Service, log *logger.Logger) (int, error) {
	results, err := svc.AddBatch(ctx, songsearch.SampleSongs())
	if err != nil {
		return 0, fmt.Errorf("seeding failed: %w", err)
	}
	created := 0
	for _, r := range results {
		if r.Created {
			created++
		}
	}
	log.Infof("Seeded %d of %d demo songs", created, len(results))
	return created, nil
}
