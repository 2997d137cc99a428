// Package fetcher retrieves remote page content, falling back through a list
// of relay endpoints when the target cannot be fetched directly.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/themescan/go-themescan/internal/httpclient"
)

// ParseMode describes how a relay wraps the fetched page body.
type ParseMode string

const (
	// ModeDirect means the relay returns the page body unmodified
	ModeDirect ParseMode = "direct"

	// ModeWrapped means the relay returns a JSON envelope whose "contents"
	// field holds the page body
	ModeWrapped ParseMode = "wrapped"
)

const (
	// DefaultUserAgent identifies the client on direct fetches
	DefaultUserAgent = "go-themescan/1.0 (+https://github.com/themescan/go-themescan)"

	// DefaultDirectTimeout bounds the direct fetch attempt
	DefaultDirectTimeout = 10 * time.Second

	// DefaultRelayTimeout bounds a single relay attempt when the relay does
	// not specify its own timeout
	DefaultRelayTimeout = 12 * time.Second

	// DefaultMinBodyLength is the smallest relay response considered a real
	// page rather than an error stub
	DefaultMinBodyLength = 100
)

// ErrAllFetchesFailed is returned when the direct attempt and every relay
// failed to produce an acceptable body.
var ErrAllFetchesFailed = errors.New("all fetch methods failed")

// Relay describes a third-party relay endpoint that fetches a target URL
// server-side. The target URL is query-escaped and appended to Endpoint.
type Relay struct {
	// Name identifies the relay in logs
	Name string

	// Endpoint is the relay URL prefix the escaped target is appended to
	Endpoint string

	// Mode selects how the relay response is parsed
	Mode ParseMode

	// Timeout bounds this relay's attempt; zero means DefaultRelayTimeout
	Timeout time.Duration
}

// DefaultRelays returns the built-in relay list. The services and their
// envelope shapes are external contracts; callers with their own relays
// should inject them via Config.
func DefaultRelays() []Relay {
	return []Relay{
		{
			Name:     "allorigins",
			Endpoint: "https://api.allorigins.win/get?url=",
			Mode:     ModeWrapped,
			Timeout:  15 * time.Second,
		},
		{
			Name:     "corsproxy",
			Endpoint: "https://corsproxy.io/?url=",
			Mode:     ModeDirect,
			Timeout:  12 * time.Second,
		},
		{
			Name:     "codetabs",
			Endpoint: "https://api.codetabs.com/v1/proxy?quest=",
			Mode:     ModeDirect,
			Timeout:  12 * time.Second,
		},
	}
}

// Config contains configuration for the fetcher.
type Config struct {
	// Client is the HTTP client to use; nil uses the tuned default
	Client *http.Client

	// Relays is the ordered fallback list; nil uses DefaultRelays
	Relays []Relay

	// UserAgent overrides the identification header on direct fetches
	UserAgent string

	// DirectTimeout overrides the direct attempt timeout
	DirectTimeout time.Duration

	// MinBodyLength overrides the minimum acceptable relay body length
	MinBodyLength int

	// Logger receives per-attempt debug logs; nil uses slog.Default
	Logger *slog.Logger
}

// Fetcher retrieves page content with relay fallback. It performs no retries;
// callers wrap whole Fetch calls when they want retry behavior.
type Fetcher struct {
	client        *http.Client
	relays        []Relay
	userAgent     string
	directTimeout time.Duration
	minBodyLength int
	logger        *slog.Logger
}

// New creates a Fetcher. A nil config uses defaults throughout.
func New(config *Config) *Fetcher {
	if config == nil {
		config = &Config{}
	}
	f := &Fetcher{
		client:        config.Client,
		relays:        config.Relays,
		userAgent:     config.UserAgent,
		directTimeout: config.DirectTimeout,
		minBodyLength: config.MinBodyLength,
		logger:        config.Logger,
	}
	if f.client == nil {
		f.client = httpclient.NewDefault()
	}
	if f.relays == nil {
		f.relays = DefaultRelays()
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.directTimeout <= 0 {
		f.directTimeout = DefaultDirectTimeout
	}
	if f.minBodyLength <= 0 {
		f.minBodyLength = DefaultMinBodyLength
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch returns the body of the target URL as text. It tries a direct fetch
// first, then each relay in order, and fails only when every avenue is
// exhausted.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	body, err := f.fetchDirect(ctx, target)
	if err == nil {
		return body, nil
	}
	lastErr := err
	f.logger.Debug("direct fetch failed, trying relays", "url", target, "error", err)

	for _, relay := range f.relays {
		body, err = f.fetchViaRelay(ctx, relay, target)
		if err == nil {
			f.logger.Debug("relay fetch succeeded", "relay", relay.Name, "url", target)
			return body, nil
		}
		lastErr = err
		f.logger.Debug("relay fetch failed", "relay", relay.Name, "url", target, "error", err)
	}

	return "", fmt.Errorf("%w: %w", ErrAllFetchesFailed, lastErr)
}

// fetchDirect performs the plain GET against the target itself.
func (f *Fetcher) fetchDirect(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.directTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("direct fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("direct fetch: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("direct fetch: reading body: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("direct fetch: empty body")
	}
	return string(data), nil
}

// fetchViaRelay asks a single relay for the target's body and unwraps the
// response according to the relay's parse mode.
func (f *Fetcher) fetchViaRelay(ctx context.Context, relay Relay, target string) (string, error) {
	timeout := relay.Timeout
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	relayURL := relay.Endpoint + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
	if err != nil {
		return "", fmt.Errorf("relay %s: building request: %w", relay.Name, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay %s: %w", relay.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("relay %s: unexpected status %d", relay.Name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("relay %s: reading body: %w", relay.Name, err)
	}

	body := string(data)
	if relay.Mode == ModeWrapped {
		var envelope struct {
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return "", fmt.Errorf("relay %s: decoding envelope: %w", relay.Name, err)
		}
		body = envelope.Contents
	}

	if len(body) < f.minBodyLength {
		return "", fmt.Errorf("relay %s: implausibly short body (%d bytes)", relay.Name, len(body))
	}
	return body, nil
}
