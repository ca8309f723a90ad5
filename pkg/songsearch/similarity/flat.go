// Package similarity implements exact nearest-neighbour ranking over dense
// vectors by squared Euclidean distance.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyVector       = errors.New("empty vector")
)

// Candidate is a vector with an opaque caller-supplied identifier.
type Candidate struct {
	ID     string
	Vector []float32
}

// Match is a ranked candidate. Index is the candidate's position in the
// slice passed to Rank, or its insertion order in a FlatIndex.
type Match struct {
	ID         string
	Index      int
	Distance   float64
	Similarity float64
}

// SquaredL2 returns the squared Euclidean distance between a and b.
// Accumulation is done in float64.
func SquaredL2(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum, nil
}

// ScoreFromDistance maps a squared distance to (0, 1]: 1/(1+d).
func ScoreFromDistance(d float64) float64 {
	return 1.0 / (1.0 + d)
}

// Round4 rounds x to four decimal places for presentation.
func Round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// Rank scores every candidate against query and returns the topK closest in
// ascending distance. Equal distances keep candidate order. topK <= 0 or
// larger than the candidate count returns all candidates. An empty
// candidate set yields an empty, non-nil result.
func Rank(candidates []Candidate, query []float32, topK int) ([]Match, error) {
	if len(candidates) == 0 {
		return []Match{}, nil
	}
	if len(query) == 0 {
		return nil, ErrEmptyVector
	}

	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		d, err := SquaredL2(c.Vector, query)
		if err != nil {
			return nil, fmt.Errorf("candidate %q: %w", c.ID, err)
		}
		matches = append(matches, Match{
			ID:         c.ID,
			Index:      i,
			Distance:   d,
			Similarity: ScoreFromDistance(d),
		})
	}

	// Rank on the unrounded distance; rounding is for output only.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// FlatIndex is an in-memory brute-force index of fixed dimension. It is
// built per query from the filtered candidate set and is not safe for
// concurrent mutation.
type FlatIndex struct {
	dim        int
	candidates []Candidate
}

// NewFlatIndex creates an index that accepts vectors of length dim.
// A dim of 0 adopts the length of the first vector added.
func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{dim: dim}
}

// Add appends a vector to the index.
func (f *FlatIndex) Add(id string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("candidate %q: %w", id, ErrEmptyVector)
	}
	if f.dim == 0 {
		f.dim = len(vec)
	}
	if len(vec) != f.dim {
		return fmt.Errorf("candidate %q: %w: expected %d, got %d", id, ErrDimensionMismatch, f.dim, len(vec))
	}
	f.candidates = append(f.candidates, Candidate{ID: id, Vector: vec})
	return nil
}

// Len returns the number of vectors in the index.
func (f *FlatIndex) Len() int { return len(f.candidates) }

// Dimension returns the vector length accepted by the index.
func (f *FlatIndex) Dimension() int { return f.dim }

// Search returns the topK nearest vectors to query.
func (f *FlatIndex) Search(query []float32, topK int) ([]Match, error) {
	if len(f.candidates) == 0 {
		return []Match{}, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query: %w: expected %d, got %d", ErrDimensionMismatch, f.dim, len(query))
	}
	return Rank(f.candidates, query, topK)
}
