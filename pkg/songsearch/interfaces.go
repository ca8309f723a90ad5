package songsearch

import (
	"context"
)

type Service interface {
	AddSong(ctx context.Context, song Song) (*AddResult, error)
	AddBatch(ctx context.Context, songs []Song) ([]AddResult, error)
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	GetSong(ctx context.Context, fingerprint string) (*CatalogSong, error)
	ListSongs(ctx context.Context, filters Filters) ([]CatalogSong, error)
	DeleteSong(ctx context.Context, fingerprint string) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

type Storage interface {
	InsertIfAbsent(ctx context.Context, entry *Entry) (bool, error)
	FetchByFilters(ctx context.Context, filters Filters) ([]Entry, error)
	FetchByKey(ctx context.Context, fingerprint string) (*Entry, error)
	DeleteByKey(ctx context.Context, fingerprint string) error
	Count(ctx context.Context) (int64, error)
	Models(ctx context.Context) ([]string, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
