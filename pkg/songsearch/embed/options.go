package embed

import (
	"net/http"
	"time"
)

type config struct {
	model      string
	dim        int
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
	keyPrefix  string
}

// Option configures an embedder.
type Option func(*config)

// WithModel sets the embedding model name.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithDimension sets the output vector length. For OpenAI it is only sent
// to models that accept a dimensions parameter.
func WithDimension(dim int) Option {
	return func(c *config) { c.dim = dim }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithCacheTTL sets how long Cached keeps a vector in Redis.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// WithKeyPrefix sets the Redis key prefix used by Cached.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) { c.keyPrefix = prefix }
}
