package songsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/himanishpuri/SongSearch/pkg/logger"
	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
	"github.com/himanishpuri/SongSearch/pkg/songsearch/similarity"
)

// searchService is the default implementation of the Service interface.
type searchService struct {
	storage  Storage
	embedder embed.Embedder
	log      Logger
	config   *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Named("songsearch")
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = DefaultTopK
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = MaxTopK
	}
	if cfg.DefaultTopK > cfg.MaxTopK {
		return nil, invalidf("default top_k %d exceeds max top_k %d", cfg.DefaultTopK, cfg.MaxTopK)
	}

	if cfg.Embedder == nil {
		cfg.Embedder = embed.NewHash()
	}
	emb := cfg.Embedder
	if _, ok := emb.(*embed.Pool); !ok {
		emb = embed.NewPool(emb, cfg.EmbedConcurrency)
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	cfg.Logger.Infof("Using embedder %s (dim=%d)", emb.Model(), emb.Dimension())

	return &searchService{
		storage:  stor,
		embedder: emb,
		log:      cfg.Logger,
		config:   cfg,
	}, nil
}

// AddSong fingerprints and embeds a record and stores it unless an entry
// with the same fingerprint already exists.
func (s *searchService) AddSong(ctx context.Context, song Song) (*AddResult, error) {
	// 1. Validate before any embedding or storage work
	if err := song.Validate(); err != nil {
		return nil, err
	}

	// 2. Fingerprint
	fp := song.Fingerprint()
	s.log.Debugf("Processing song: %s by %s (%s)", song.Title, song.Artist, fp)

	// 3. Embed canonical text
	vec, err := s.embedder.Embed(ctx, song.CanonicalText())
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if err := embed.Check(vec, s.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}

	encoded, err := embed.Marshal(vec)
	if err != nil {
		return nil, err
	}

	// 4. Insert if absent
	created, err := s.storage.InsertIfAbsent(ctx, &Entry{
		Fingerprint: fp,
		Song:        song,
		Embedding:   encoded,
		Model:       s.embedder.Model(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store song: %w", err)
	}

	if created {
		s.log.Infof("Added song %s by %s (%s)", song.Title, song.Artist, fp)
	} else {
		s.log.Infof("Song %s already exists", fp)
	}
	return &AddResult{Fingerprint: fp, Created: created}, nil
}

// AddBatch adds songs in order. Invalid records abort the batch before
// anything is written.
func (s *searchService) AddBatch(ctx context.Context, songs []Song) ([]AddResult, error) {
	for i, song := range songs {
		if err := song.Validate(); err != nil {
			return nil, fmt.Errorf("song %d: %w", i, err)
		}
	}

	results := make([]AddResult, 0, len(songs))
	created := 0
	for i, song := range songs {
		res, err := s.AddSong(ctx, song)
		if err != nil {
			return results, fmt.Errorf("song %d: %w", i, err)
		}
		if res.Created {
			created++
		}
		results = append(results, *res)
	}

	s.log.Infof("Batch complete: %d added, %d already present", created, len(songs)-created)
	return results, nil
}

// Search ranks the entries that pass the filters by distance to the query.
func (s *searchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	// 1. Validate
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, invalidf("missing search query")
	}
	topK, err := s.resolveTopK(req.TopK)
	if err != nil {
		return nil, err
	}
	if req.Filters.Year < 0 {
		return nil, invalidf("year filter must be non-negative, got %d", req.Filters.Year)
	}

	// 2. Candidate retrieval
	entries, err := s.storage.FetchByFilters(ctx, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	s.log.Debugf("Query %q matched %d candidates", query, len(entries))

	resp := &SearchResponse{
		Query:      req.Query,
		TopK:       topK,
		Candidates: len(entries),
		Results:    []SearchResult{},
	}
	if len(entries) == 0 {
		return resp, nil
	}

	// 3. Decode stored embeddings
	candidates, err := s.decodeCandidates(entries)
	if err != nil {
		s.log.Errorf("Search aborted: %v", err)
		return nil, err
	}

	// 4. Embed the query once
	qvec, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}
	if err := embed.Check(qvec, s.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrDimensionMismatch, err)
	}

	// 5. Rank
	idx := similarity.NewFlatIndex(s.embedder.Dimension())
	for _, c := range candidates {
		if err := idx.Add(c.ID, c.Vector); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
		}
	}
	matches, err := idx.Search(qvec, topK)
	if err != nil {
		if errors.Is(err, similarity.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
		}
		return nil, err
	}

	// 6. Shape
	for _, m := range matches {
		e := entries[m.Index]
		resp.Results = append(resp.Results, SearchResult{
			Fingerprint: e.Fingerprint,
			Song:        e.Song,
			Similarity:  similarity.Round4(m.Similarity),
			Distance:    m.Distance,
		})
	}

	s.log.Infof("Search %q returned %d of %d candidates", query, len(resp.Results), len(entries))
	return resp, nil
}

func (s *searchService) resolveTopK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, invalidf("top_k must be non-negative, got %d", k)
	case k == 0:
		return s.config.DefaultTopK, nil
	case k > s.config.MaxTopK:
		s.log.Debugf("Clamping top_k %d to %d", k, s.config.MaxTopK)
		return s.config.MaxTopK, nil
	default:
		return k, nil
	}
}

// decodeCandidates parses every stored vector. The first unreadable or
// incompatible entry fails the whole search.
func (s *searchService) decodeCandidates(entries []Entry) ([]similarity.Candidate, error) {
	model := s.embedder.Model()
	dim := s.embedder.Dimension()

	out := make([]similarity.Candidate, len(entries))
	for i, e := range entries {
		if e.Model != "" && e.Model != model {
			return nil, fmt.Errorf("%w: entry %s was embedded with %s, active model is %s",
				ErrModelMismatch, e.Fingerprint, e.Model, model)
		}
		vec, err := embed.Unmarshal(e.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %w", ErrCorruptEmbedding, e.Fingerprint, err)
		}
		if err := embed.Check(vec, dim); err != nil {
			if errors.Is(err, embed.ErrNonFinite) {
				return nil, fmt.Errorf("%w: entry %s: %w", ErrCorruptEmbedding, e.Fingerprint, err)
			}
			return nil, fmt.Errorf("%w: entry %s: %w", ErrDimensionMismatch, e.Fingerprint, err)
		}
		out[i] = similarity.Candidate{ID: e.Fingerprint, Vector: vec}
	}
	return out, nil
}

// GetSong retrieves a stored record by fingerprint.
func (s *searchService) GetSong(ctx context.Context, fp string) (*CatalogSong, error) {
	if fp == "" {
		return nil, invalidf("missing song hash")
	}
	e, err := s.storage.FetchByKey(ctx, fp)
	if err != nil {
		return nil, err
	}
	cs := catalogSong(e)
	return &cs, nil
}

// ListSongs returns the records passing filters in insertion order.
func (s *searchService) ListSongs(ctx context.Context, filters Filters) ([]CatalogSong, error) {
	entries, err := s.storage.FetchByFilters(ctx, filters)
	if err != nil {
		return nil, err
	}
	songs := make([]CatalogSong, len(entries))
	for i := range entries {
		songs[i] = catalogSong(&entries[i])
	}
	return songs, nil
}

// DeleteSong removes a record by fingerprint.
func (s *searchService) DeleteSong(ctx context.Context, fp string) error {
	if fp == "" {
		return invalidf("missing song hash")
	}
	if err := s.storage.DeleteByKey(ctx, fp); err != nil {
		return err
	}
	s.log.Infof("Deleted song %s", fp)
	return nil
}

func (s *searchService) Stats(ctx context.Context) (*Stats, error) {
	n, err := s.storage.Count(ctx)
	if err != nil {
		return nil, err
	}
	models, err := s.storage.Models(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Songs:        n,
		Model:        s.embedder.Model(),
		Dimension:    s.embedder.Dimension(),
		StoredModels: models,
	}, nil
}

// Close releases the storage and, if it holds resources, the embedder.
func (s *searchService) Close() error {
	var errs []error
	if c, ok := s.config.Embedder.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.storage.Close())
	return errors.Join(errs...)
}

func catalogSong(e *Entry) CatalogSong {
	return CatalogSong{
		Fingerprint: e.Fingerprint,
		Song:        e.Song,
		Model:       e.Model,
		CreatedAt:   e.CreatedAt,
	}
}
