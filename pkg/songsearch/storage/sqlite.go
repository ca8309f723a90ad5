package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/SongSearch/pkg/utils"
)

const errDBClientNil = "db client is nil"

// ErrNotFound is returned when no row matches the requested fingerprint.
var ErrNotFound = errors.New("song not found")

// DBClient is the sqlite-backed catalog. Writes are serialised through mu;
// reads share it.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
	mu sync.RWMutex
}

// Song is one catalog row: the record, its fingerprint and its embedding
// serialised as a JSON array.
type Song struct {
	Hash        string    `gorm:"primaryKey;type:char(64)" json:"hash"`
	Artist      string    `gorm:"index:idx_song_artist" json:"artist"`
	Title       string    `gorm:"column:song;index:idx_song_title" json:"song"`
	Album       string    `gorm:"index:idx_song_album" json:"album"`
	Year        *int      `gorm:"index:idx_song_year" json:"year"`
	Description string    `json:"description"`
	Embedding   string    `gorm:"type:text;not null" json:"-"`
	Model       string    `gorm:"index:idx_song_model" json:"model"`
	Seq         int64     `gorm:"not null;default:0;index:idx_song_seq" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// nextSeq assigns insertion order inside the INSERT itself. Rows are listed
// by seq, so the order survives VACUUM renumbering rowids.
const nextSeq = "(SELECT COALESCE(MAX(seq), 0) + 1 FROM songs)"

// Filters selects rows by exact match. Empty strings and a nil Year are
// ignored; the remaining fields are combined with AND.
type Filters struct {
	Artist string
	Title  string
	Album  string
	Year   *int
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Song{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InsertIfAbsent stores song unless a row with the same hash exists.
// It reports whether a new row was written; an existing row is left untouched.
func (c *DBClient) InsertIfAbsent(ctx context.Context, song *Song) (bool, error) {
	if c == nil || c.DB == nil {
		return false, errors.New(errDBClientNil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now().UTC()
	}

	res := c.DB.WithContext(ctx).Model(&Song{}).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hash"}}, DoNothing: true}).
		Create(map[string]any{
			"hash":        song.Hash,
			"artist":      song.Artist,
			"song":        song.Title,
			"album":       song.Album,
			"year":        song.Year,
			"description": song.Description,
			"embedding":   song.Embedding,
			"model":       song.Model,
			"created_at":  song.CreatedAt,
			"seq":         gorm.Expr(nextSeq),
		})
	if res.Error != nil {
		return false, fmt.Errorf("inserting song: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FetchByFilters returns matching rows in insertion order.
func (c *DBClient) FetchByFilters(ctx context.Context, f Filters) ([]Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := c.DB.WithContext(ctx).Model(&Song{})
	if f.Artist != "" {
		q = q.Where("artist = ?", f.Artist)
	}
	if f.Title != "" {
		q = q.Where("song = ?", f.Title)
	}
	if f.Album != "" {
		q = q.Where("album = ?", f.Album)
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}

	var rows []Song
	if err := q.Order("seq, rowid").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	return rows, nil
}

func (c *DBClient) FetchByKey(ctx context.Context, hash string) (*Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var song Song
	err := c.DB.WithContext(ctx).Where("hash = ?", hash).First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

func (c *DBClient) DeleteByKey(ctx context.Context, hash string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.DB.WithContext(ctx).Where("hash = ?", hash).Delete(&Song{})
	if res.Error != nil {
		return fmt.Errorf("deleting song: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	return nil
}

func (c *DBClient) Count(ctx context.Context) (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	if err := c.DB.WithContext(ctx).Model(&Song{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return n, nil
}

// Models returns the distinct embedding models present in the catalog.
func (c *DBClient) Models(ctx context.Context) ([]string, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var models []string
	if err := c.DB.WithContext(ctx).Model(&Song{}).Distinct().Order("model").Pluck("model", &models).Error; err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	return models, nil
}
