// Package config loads process configuration from an optional YAML file
// and environment overrides. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/SongSearch/pkg/songsearch/embed"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Cache    CacheConfig    `yaml:"cache"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Seed     SeedConfig     `yaml:"seed"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	StaticDir      string        `yaml:"static_dir"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type EmbedderConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"` // 0 means the provider default
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Concurrency int    `yaml:"concurrency"`
}

// CacheConfig enables the Redis embedding cache when Addr is set.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`
}

type SeedConfig struct {
	OnStart bool `yaml:"on_start"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "",
			Port:           8080,
			StaticDir:      "static",
			AllowedOrigins: []string{"*"},
			RequestTimeout: 30 * time.Second,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Storage: StorageConfig{
			DBPath: "songs.sqlite3",
		},
		Embedder: EmbedderConfig{
			Provider: "hash",
		},
		Cache: CacheConfig{
			TTL:    7 * 24 * time.Hour,
			Prefix: "songsearch:embed:",
		},
		Search: SearchConfig{
			DefaultTopK: 5,
			MaxTopK:     100,
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Load returns defaults overlaid with the YAML file at path (if non-empty)
// and then with environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays values from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SONGSEARCH_DB_PATH"); ok && v != "" {
		c.Storage.DBPath = v
	}
	if v, ok := lookup("SONGSEARCH_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SONGSEARCH_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("SONGSEARCH_STATIC_DIR"); ok && v != "" {
		c.Server.StaticDir = v
	}
	if v, ok := lookup("SONGSEARCH_EMBED_PROVIDER"); ok && v != "" {
		c.Embedder.Provider = v
	}
	if v, ok := lookup("SONGSEARCH_EMBED_MODEL"); ok && v != "" {
		c.Embedder.Model = v
	}
	if v, ok := lookup("SONGSEARCH_EMBED_BASE_URL"); ok && v != "" {
		c.Embedder.BaseURL = v
	}
	if c.Embedder.APIKey == "" {
		if v, ok := lookup("OPENAI_API_KEY"); ok {
			c.Embedder.APIKey = v
		}
	}
	if v, ok := lookup("SONGSEARCH_EMBED_API_KEY"); ok && v != "" {
		c.Embedder.APIKey = v
	}
	if v, ok := lookup("SONGSEARCH_REDIS_ADDR"); ok {
		c.Cache.Addr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if _, ok := lookup("NO_COLOR"); ok {
		c.Logging.Color = false
	}
	return nil
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		errs = append(errs, errors.New("storage.db_path is required"))
	}

	switch c.Embedder.Provider {
	case "hash", "":
	case "openai":
		if c.Embedder.APIKey == "" {
			errs = append(errs, errors.New("embedder.api_key is required for the openai provider"))
		}
		if m := c.Embedder.Model; m != "" && !embed.SupportsDimensions(m) && c.Embedder.Dimension == 0 {
			errs = append(errs, fmt.Errorf("embedder.dimension is required for model %q", m))
		}
	default:
		errs = append(errs, fmt.Errorf("embedder.provider %q is not one of hash, openai", c.Embedder.Provider))
	}
	if c.Embedder.Dimension < 0 {
		errs = append(errs, fmt.Errorf("embedder.dimension %d must be non-negative", c.Embedder.Dimension))
	}
	if c.Embedder.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("embedder.concurrency %d must be non-negative", c.Embedder.Concurrency))
	}

	if c.Search.DefaultTopK <= 0 {
		errs = append(errs, fmt.Errorf("search.default_top_k %d must be positive", c.Search.DefaultTopK))
	}
	if c.Search.MaxTopK < c.Search.DefaultTopK {
		errs = append(errs, fmt.Errorf("search.max_top_k %d is below default_top_k %d", c.Search.MaxTopK, c.Search.DefaultTopK))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
