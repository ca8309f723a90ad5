package embed

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of in-flight calls into a shared Embedder.
// Callers block until a slot is free or their context is done.
type Pool struct {
	inner Embedder
	sem   *semaphore.Weighted
	size  int
}

var _ Embedder = (*Pool)(nil)

// NewPool wraps inner so that at most size calls run at once.
// A size of 0 or less uses runtime.NumCPU().
func NewPool(inner Embedder, size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(size)),
		size:  size,
	}
}

func (p *Pool) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)
	return p.inner.Embed(ctx, text)
}

// EmbedBatch holds a single slot for the whole batch.
func (p *Pool) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)
	return p.inner.EmbedBatch(ctx, texts)
}

func (p *Pool) Dimension() int { return p.inner.Dimension() }
func (p *Pool) Model() string  { return p.inner.Model() }

// Size returns the maximum number of concurrent calls.
func (p *Pool) Size() int { return p.size }
