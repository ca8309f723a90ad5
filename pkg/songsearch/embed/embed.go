// Package embed turns song text into dense float32 vectors.
//
// Two providers are available: [Hash], a deterministic offline embedder based
// on feature hashing, and [OpenAI], which calls an OpenAI-compatible
// embeddings endpoint. [Pool] bounds concurrent calls into any Embedder and
// [Cached] memoises results in Redis.
//
//	e := embed.NewHash(embed.WithDimension(384))
//	vec, err := e.Embed(ctx, "Yesterday, The Beatles, Help!, 1965, ")
package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Embedder converts text into dense float32 vectors of a fixed dimension.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the length of every vector the embedder produces.
	Dimension() int

	// Model identifies the embedding model. Vectors from different models
	// are not comparable.
	Model() string
}

var (
	ErrEmptyInput        = errors.New("embed: empty input")
	ErrDimensionMismatch = errors.New("embed: dimension mismatch")
	ErrNonFinite         = errors.New("embed: non-finite component")
	ErrUnknownProvider   = errors.New("embed: unknown provider")
)

// Check verifies that vec has length dim and contains only finite values.
func Check(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, len(vec))
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Provider names accepted by New.
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
)

// New builds an embedder for the named provider.
func New(provider, apiKey string, opts ...Option) (Embedder, error) {
	switch provider {
	case "", ProviderHash:
		return NewHash(opts...), nil
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAI(apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

func float64sToFloat32s(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}

// embedEach implements EmbedBatch in terms of Embed.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}
