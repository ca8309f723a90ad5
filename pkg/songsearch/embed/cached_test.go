package embed_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
)

// countingEmbedder counts calls into the wrapped embedder.
type countingEmbedder struct {
	embed.Embedder
	calls atomic.Int32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.Embedder.Embed(ctx, text)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("SONGSEARCH_TEST_REDIS")
	if addr == "" {
		t.Skip("SONGSEARCH_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	return client
}

func TestCachedHitsRedis(t *testing.T) {
	client := setupRedis(t)
	prefix := "songsearch:test:" + time.Now().Format("150405.000000") + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	inner := &countingEmbedder{Embedder: embed.NewHash(embed.WithDimension(16))}
	c := embed.NewCached(inner, client, embed.WithKeyPrefix(prefix), embed.WithCacheTTL(time.Minute))
	ctx := context.Background()

	first, err := c.Embed(ctx, "Hey Jude")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, err := c.Embed(ctx, "Hey Jude")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if got := inner.calls.Load(); got != 1 {
		t.Errorf("Expected 1 call into inner embedder, got %d", got)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Expected cached vector to match, index %d: %v vs %v", i, first[i], second[i])
		}
	}
	if c.Model() != inner.Model() || c.Dimension() != 16 {
		t.Errorf("Expected metadata to pass through, got %s/%d", c.Model(), c.Dimension())
	}
}

func TestCachedFallsThroughWhenRedisDown(t *testing.T) {
	// Nothing listens on this port; every cache call fails fast.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	inner := &countingEmbedder{Embedder: embed.NewHash(embed.WithDimension(8))}
	c := embed.NewCached(inner, client)

	vec, err := c.Embed(context.Background(), "Let It Be")
	if err != nil {
		t.Fatalf("Expected fallback to inner embedder, got %v", err)
	}
	if len(vec) != 8 {
		t.Errorf("Expected 8 values, got %d", len(vec))
	}
	if inner.calls.Load() != 1 {
		t.Errorf("Expected 1 inner call, got %d", inner.calls.Load())
	}
}
