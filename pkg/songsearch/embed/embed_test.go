package embed_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
)

func TestHashDeterministicAndShaped(t *testing.T) {
	e := embed.NewHash(embed.WithDimension(64))
	ctx := context.Background()

	text := "Yesterday, The Beatles, Help!, 1965, A melancholic ballad"
	a, err := e.Embed(ctx, text)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(ctx, text)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if err := embed.Check(a, 64); err != nil {
		t.Fatalf("Check: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected identical vectors, index %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("Expected unit norm, got %v", norm)
	}
}

func TestHashModelEncodesDimension(t *testing.T) {
	if got := embed.NewHash().Model(); got != "hash-fnv1a-384" {
		t.Errorf("Expected default model hash-fnv1a-384, got %s", got)
	}
	if got := embed.NewHash(embed.WithDimension(8)).Dimension(); got != 8 {
		t.Errorf("Expected dimension 8, got %d", got)
	}
}

func TestHashSimilarTextIsCloser(t *testing.T) {
	e := embed.NewHash()
	ctx := context.Background()

	base, _ := e.Embed(ctx, "smooth jazz saxophone late night")
	near, _ := e.Embed(ctx, "late night jazz with saxophone")
	far, _ := e.Embed(ctx, "thrash metal guitar riffs")

	if dist(base, near) >= dist(base, far) {
		t.Errorf("Expected overlapping text to be closer: near=%v far=%v", dist(base, near), dist(base, far))
	}
}

func TestEmptyInput(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer(t, 4, nil)
	defer srv.Close()

	embedders := map[string]embed.Embedder{
		"hash":   embed.NewHash(),
		"openai": embed.NewOpenAI("k", embed.WithBaseURL(srv.URL), embed.WithDimension(4)),
		"pool":   embed.NewPool(embed.NewHash(), 2),
	}
	for name, e := range embedders {
		t.Run(name, func(t *testing.T) {
			if _, err := e.Embed(ctx, ""); !errors.Is(err, embed.ErrEmptyInput) {
				t.Errorf("Expected ErrEmptyInput, got %v", err)
			}
			if _, err := e.EmbedBatch(ctx, nil); !errors.Is(err, embed.ErrEmptyInput) {
				t.Errorf("Expected ErrEmptyInput for empty batch, got %v", err)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	if err := embed.Check([]float32{1, 2}, 3); !errors.Is(err, embed.ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
	nan := float32(math.NaN())
	if err := embed.Check([]float32{1, nan}, 2); !errors.Is(err, embed.ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite, got %v", err)
	}
	inf := float32(math.Inf(1))
	if err := embed.Check([]float32{inf}, 1); !errors.Is(err, embed.ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite, got %v", err)
	}
	if err := embed.Check([]float32{0, 1}, 2); err != nil {
		t.Errorf("Expected valid vector, got %v", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.25, 3.5e-7, 0}
	s, err := embed.Marshal(vec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := embed.Unmarshal(s)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("Index %d: expected %v, got %v", i, vec[i], got[i])
		}
	}

	for _, bad := range []string{"", "not json", "[]", `{"a":1}`} {
		if _, err := embed.Unmarshal(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestNewProvider(t *testing.T) {
	if e, err := embed.New("", ""); err != nil || e.Model() != "hash-fnv1a-384" {
		t.Errorf("Expected default hash embedder, got %v, %v", e, err)
	}
	if _, err := embed.New(embed.ProviderOpenAI, ""); err == nil {
		t.Error("Expected error for openai without key")
	}
	if _, err := embed.New("word2vec", ""); !errors.Is(err, embed.ErrUnknownProvider) {
		t.Errorf("Expected ErrUnknownProvider, got %v", err)
	}
}

// fakeEmbeddingResponse builds a minimal OpenAI-compatible embedding response.
func fakeEmbeddingResponse(dim int, n int) []byte {
	type embItem struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	}
	type resp struct {
		Object string    `json:"object"`
		Model  string    `json:"model"`
		Data   []embItem `json:"data"`
		Usage  struct {
			PromptTokens int `json:"prompt_tokens"`
			TotalTokens  int `json:"total_tokens"`
		} `json:"usage"`
	}

	r := resp{Object: "list", Model: "test-model"}
	for i := 0; i < n; i++ {
		vec := make([]float64, dim)
		for j := range vec {
			vec[j] = float64(i+1) * 0.01 * float64(j+1)
		}
		r.Data = append(r.Data, embItem{Object: "embedding", Index: i, Embedding: vec})
	}
	b, _ := json.Marshal(r)
	return b
}

// newFakeServer returns a server that answers embeddings requests with dim
// values per input. Each decoded request body is passed to seen if non-nil.
func newFakeServer(t *testing.T, dim int, seen func(map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if seen != nil {
			seen(req)
		}

		n := 1
		if arr, ok := req["input"].([]any); ok {
			n = len(arr)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(fakeEmbeddingResponse(dim, n))
	}))
}

func TestOpenAIEmbed(t *testing.T) {
	const dim = 4
	var mu sync.Mutex
	var last map[string]any
	srv := newFakeServer(t, dim, func(req map[string]any) {
		mu.Lock()
		last = req
		mu.Unlock()
	})
	defer srv.Close()

	e := embed.NewOpenAI("test-key", embed.WithBaseURL(srv.URL), embed.WithDimension(dim))
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != dim {
		t.Fatalf("Expected %d values, got %d", dim, len(vec))
	}
	if e.Model() != embed.ModelOpenAI3Small {
		t.Errorf("Expected default model %s, got %s", embed.ModelOpenAI3Small, e.Model())
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := last["dimensions"]; !ok {
		t.Errorf("Expected dimensions to be sent for %s, got %v", e.Model(), last)
	}
}

func TestOpenAICompatibleModelOmitsDimensions(t *testing.T) {
	var sent atomic.Bool
	srv := newFakeServer(t, 384, func(req map[string]any) {
		if _, ok := req["dimensions"]; ok {
			sent.Store(true)
		}
	})
	defer srv.Close()

	e := embed.NewOpenAI("test-key",
		embed.WithBaseURL(srv.URL),
		embed.WithModel(embed.ModelMiniLM),
		embed.WithDimension(384),
	)
	if _, err := e.Embed(context.Background(), "hola"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if sent.Load() {
		t.Error("Expected dimensions to be omitted for a fixed-size model")
	}
}

func TestOpenAIBatch(t *testing.T) {
	srv := newFakeServer(t, 3, nil)
	defer srv.Close()

	e := embed.NewOpenAI("test-key", embed.WithBaseURL(srv.URL), embed.WithDimension(3))
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("Expected 3 vectors, got %d", len(vecs))
	}
	if vecs[0][0] == vecs[1][0] {
		t.Error("Expected distinct vectors per input")
	}
}

func TestOpenAIDimensionMismatch(t *testing.T) {
	srv := newFakeServer(t, 5, nil)
	defer srv.Close()

	e := embed.NewOpenAI("test-key", embed.WithBaseURL(srv.URL), embed.WithDimension(4))
	if _, err := e.Embed(context.Background(), "hello"); !errors.Is(err, embed.ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}

// slowEmbedder records the peak number of concurrent calls.
type slowEmbedder struct {
	active atomic.Int32
	peak   atomic.Int32
}

func (s *slowEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return []float32{1}, nil
}

func (s *slowEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("not used")
}
func (s *slowEmbedder) Dimension() int { return 1 }
func (s *slowEmbedder) Model() string  { return "slow" }

func TestPoolBoundsConcurrency(t *testing.T) {
	inner := &slowEmbedder{}
	p := embed.NewPool(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Embed(context.Background(), "x"); err != nil {
				t.Errorf("Embed: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := inner.peak.Load(); peak > 2 {
		t.Errorf("Expected at most 2 concurrent calls, got %d", peak)
	}
	if p.Size() != 2 || p.Model() != "slow" || p.Dimension() != 1 {
		t.Errorf("Unexpected pool metadata: size=%d model=%s dim=%d", p.Size(), p.Model(), p.Dimension())
	}
}

func TestPoolHonoursContext(t *testing.T) {
	p := embed.NewPool(&slowEmbedder{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Embed(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func dist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
