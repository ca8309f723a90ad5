package songsearch

import (
	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
)

const (
	DefaultTopK = 5
	MaxTopK     = 100
)

type Config struct {
	DBPath           string
	DefaultTopK      int
	MaxTopK          int
	EmbedConcurrency int
	Embedder         embed.Embedder
	Logger           Logger
	Storage          Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithDefaultTopK sets the result count used when a request leaves it at 0.
func WithDefaultTopK(k int) Option {
	return func(c *Config) {
		c.DefaultTopK = k
	}
}

// WithMaxTopK sets the ceiling that larger requested counts are clamped to.
func WithMaxTopK(k int) Option {
	return func(c *Config) {
		c.MaxTopK = k
	}
}

// WithEmbedConcurrency bounds concurrent embedder calls. 0 uses NumCPU.
func WithEmbedConcurrency(n int) Option {
	return func(c *Config) {
		c.EmbedConcurrency = n
	}
}

func WithEmbedder(e embed.Embedder) Option {
	return func(c *Config) {
		c.Embedder = e
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:      "songs.sqlite3",
		DefaultTopK: DefaultTopK,
		MaxTopK:     MaxTopK,
		Logger:      nil,
	}
}
