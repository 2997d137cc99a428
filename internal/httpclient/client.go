// Package httpclient builds the HTTP client used for page and relay fetches.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config holds transport tuning for the detection HTTP client.
type Config struct {
	// MaxIdleConns caps idle keep-alive connections across all hosts
	MaxIdleConns int

	// MaxIdleConnsPerHost caps idle keep-alive connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays open
	IdleConnTimeout time.Duration

	// DialTimeout bounds connection establishment
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers
	ResponseHeaderTimeout time.Duration
}

// DefaultConfig returns transport settings sized for fetching a handful of
// pages per detection. Per-request deadlines are handled by the fetcher via
// context, so the client itself carries no overall timeout.
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		DialTimeout:           10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
}

// New creates an HTTP client with the provided configuration. A nil config
// uses DefaultConfig.
func New(config *Config) *http.Client {
	if config == nil {
		cfg := DefaultConfig()
		config = &cfg
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}

// NewDefault creates an HTTP client with default configuration.
func NewDefault() *http.Client {
	return New(nil)
}
