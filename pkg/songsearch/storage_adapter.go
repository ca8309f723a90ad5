package songsearch

import (
	"context"

	"github.com/himanishpuri/SongSearch/pkg/songsearch/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) InsertIfAbsent(ctx context.Context, entry *Entry) (bool, error) {
	row := &storage.Song{
		Hash:        entry.Fingerprint,
		Artist:      entry.Artist,
		Title:       entry.Title,
		Album:       entry.Album,
		Year:        entry.Year,
		Description: entry.Description,
		Embedding:   entry.Embedding,
		Model:       entry.Model,
	}
	created, err := s.db.InsertIfAbsent(ctx, row)
	if err != nil {
		return false, err
	}
	entry.CreatedAt = row.CreatedAt
	return created, nil
}

func (s *storageAdapter) FetchByFilters(ctx context.Context, f Filters) ([]Entry, error) {
	sf := storage.Filters{Artist: f.Artist, Title: f.Title, Album: f.Album}
	if f.Year != 0 {
		year := f.Year
		sf.Year = &year
	}

	rows, err := s.db.FetchByFilters(ctx, sf)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(rows))
	for i := range rows {
		entries[i] = entryFromRow(&rows[i])
	}
	return entries, nil
}

func (s *storageAdapter) FetchByKey(ctx context.Context, fp string) (*Entry, error) {
	row, err := s.db.FetchByKey(ctx, fp)
	if err != nil {
		return nil, translateStorageErr(err)
	}
	e := entryFromRow(row)
	return &e, nil
}

func (s *storageAdapter) DeleteByKey(ctx context.Context, fp string) error {
	return translateStorageErr(s.db.DeleteByKey(ctx, fp))
}

func (s *storageAdapter) Count(ctx context.Context) (int64, error) {
	return s.db.Count(ctx)
}

func (s *storageAdapter) Models(ctx context.Context) ([]string, error) {
	return s.db.Models(ctx)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func entryFromRow(row *storage.Song) Entry {
	return Entry{
		Fingerprint: row.Hash,
		Song: Song{
			Artist:      row.Artist,
			Title:       row.Title,
			Album:       row.Album,
			Year:        row.Year,
			Description: row.Description,
		},
		Embedding: row.Embedding,
		Model:     row.Model,
		CreatedAt: row.CreatedAt,
	}
}
