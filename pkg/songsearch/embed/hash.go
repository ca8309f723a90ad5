package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	hashDefaultDim   = 384
	hashModelPrefix  = "hash-fnv1a"
	hashBigramWeight = 0.5
)

// Hash is an offline embedder that projects word unigrams and bigrams into a
// fixed-size vector by signed feature hashing and L2-normalises the result.
// Identical text always yields an identical vector.
type Hash struct {
	dim int
}

var _ Embedder = (*Hash)(nil)

// NewHash creates a hashing embedder. Only WithDimension is honoured.
func NewHash(opts ...Option) *Hash {
	cfg := config{dim: hashDefaultDim}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.dim <= 0 {
		cfg.dim = hashDefaultDim
	}
	return &Hash{dim: cfg.dim}
}

func (h *Hash) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dim)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, hashBigramWeight)
		}
	}
	return normalize(vec), nil
}

func (h *Hash) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, h, texts)
}

func (h *Hash) Dimension() int { return h.dim }

// Model encodes the dimension so vectors of different sizes never mix.
func (h *Hash) Model() string { return fmt.Sprintf("%s-%d", hashModelPrefix, h.dim) }

func (h *Hash) add(vec []float64, feature string, weight float64) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()

	idx := int(sum % uint64(len(vec)))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	scale := 1.0 / math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(v * scale)
	}
	return out
}
