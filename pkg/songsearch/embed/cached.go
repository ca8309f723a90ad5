package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/himanishpuri/SongSearch/pkg/logger"
)

const (
	cacheDefaultPrefix = "songsearch:embed:"
	cacheDefaultTTL    = 7 * 24 * time.Hour
)

// Cached memoises vectors from inner in Redis, keyed by model and the
// SHA-256 of the text. Redis failures are logged and fall through to inner.
type Cached struct {
	inner  Embedder
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	log    *logger.Logger
}

var _ Embedder = (*Cached)(nil)

// NewCached wraps inner with a Redis cache. Honours WithCacheTTL and
// WithKeyPrefix.
func NewCached(inner Embedder, client redis.UniversalClient, opts ...Option) *Cached {
	cfg := config{cacheTTL: cacheDefaultTTL, keyPrefix: cacheDefaultPrefix}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.cacheTTL <= 0 {
		cfg.cacheTTL = cacheDefaultTTL
	}
	return &Cached{
		inner:  inner,
		client: client,
		ttl:    cfg.cacheTTL,
		prefix: cfg.keyPrefix,
		log:    logger.GetLogger().Named("embed.cache"),
	}
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + c.inner.Model() + ":" + hex.EncodeToString(sum[:])
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	key := c.key(text)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		vec, derr := Unmarshal(val)
		if derr == nil && Check(vec, c.inner.Dimension()) == nil {
			return vec, nil
		}
		c.log.Warnf("Discarding unreadable cache entry %s", key)
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warnf("Cache lookup failed: %v", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if enc, err := Marshal(vec); err == nil {
		if err := c.client.Set(ctx, key, enc, c.ttl).Err(); err != nil {
			c.log.Warnf("Cache store failed: %v", err)
		}
	}
	return vec, nil
}

func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, c, texts)
}

func (c *Cached) Dimension() int { return c.inner.Dimension() }
func (c *Cached) Model() string  { return c.inner.Model() }

// Close closes the Redis client.
func (c *Cached) Close() error { return c.client.Close() }
