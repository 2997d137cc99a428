package themescan

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/themescan/go-themescan/internal/fetcher"
)

// Config contains configuration options for the detector.
type Config struct {
	// HTTPClient is used for all page and relay fetches
	HTTPClient *http.Client
	// Relays is the ordered relay fallback list for cross-origin fetches
	Relays []fetcher.Relay
	// UserAgent identifies the client on direct fetches
	UserAgent string
	// DirectTimeout bounds the direct fetch attempt
	DirectTimeout time.Duration
	// MinBodyLength is the smallest relay body accepted as a real page
	MinBodyLength int
	// CacheTTL is how long detection results stay cached
	CacheTTL time.Duration
	// CacheSize is the maximum number of cached results
	CacheSize int
	// MaxRetries is how many times a failed fetch is retried
	MaxRetries int
	// RetryBackoff is the base delay between retries; attempt n waits n times this
	RetryBackoff time.Duration
	// DisableCache turns off result caching entirely
	DisableCache bool
	// Logger receives structured detection logs
	Logger *slog.Logger
}

// Option is a function that configures the detector.
type Option func(*Config)

// WithHTTPClient sets the HTTP client used for all fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithRelays replaces the relay fallback list.
func WithRelays(relays []fetcher.Relay) Option {
	return func(c *Config) {
		c.Relays = relays
	}
}

// WithUserAgent sets the identification header for direct fetches.
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithDirectTimeout sets the timeout for the direct fetch attempt.
func WithDirectTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.DirectTimeout = timeout
	}
}

// WithMinBodyLength sets the minimum relay body length accepted as a page.
func WithMinBodyLength(length int) Option {
	return func(c *Config) {
		c.MinBodyLength = length
	}
}

// WithCacheTTL sets how long detection results stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

// WithCacheSize sets the result cache capacity.
func WithCacheSize(size int) Option {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// WithMaxRetries sets how many times a failed fetch is retried.
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithRetryBackoff sets the base delay between fetch retries.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(c *Config) {
		c.RetryBackoff = backoff
	}
}

// WithoutCache disables result caching.
func WithoutCache() Option {
	return func(c *Config) {
		c.DisableCache = true
	}
}

// WithLogger sets the logger for structured detection logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
