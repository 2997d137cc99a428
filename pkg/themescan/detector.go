// Package themescan provides WordPress theme and plugin detection for
// arbitrary websites, based on fetched markup and stylesheet content.
package themescan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/themescan/go-themescan/internal/cache"
	"github.com/themescan/go-themescan/internal/detection"
	"github.com/themescan/go-themescan/internal/fetcher"
	"github.com/themescan/go-themescan/internal/models"
	"github.com/themescan/go-themescan/internal/scanner"
)

const (
	// DefaultMaxRetries is how many times a failed fetch is re-attempted
	DefaultMaxRetries = 2

	// DefaultRetryBackoff is the base delay between retries; attempt n
	// waits n times this before re-attempting
	DefaultRetryBackoff = time.Second
)

// Non-success classification messages.
const (
	msgNotWordPress   = "the site does not appear to be a WordPress site"
	msgThemeNotFound  = "WordPress was detected but the theme could not be identified"
	msgFetchTimedOut  = "fetching the site timed out"
	msgFetchExhausted = "could not fetch the site"
)

// Detector is a client for detecting WordPress themes on websites.
type Detector struct {
	config  *Config
	fetcher *fetcher.Fetcher
	cache   *cache.ResultCache
	logger  *slog.Logger
}

// New creates a new theme detector.
func New(options ...Option) *Detector {
	config := &Config{}
	for _, option := range options {
		option(config)
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultRetryBackoff
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{
		config: config,
		fetcher: fetcher.New(&fetcher.Config{
			Client:        config.HTTPClient,
			Relays:        config.Relays,
			UserAgent:     config.UserAgent,
			DirectTimeout: config.DirectTimeout,
			MinBodyLength: config.MinBodyLength,
			Logger:        logger,
		}),
		cache:  cache.New(config.CacheTTL, config.CacheSize),
		logger: logger,
	}
}

// DetectTheme identifies the WordPress theme and plugins of the site at
// rawURL. All failure classes funnel into the returned DetectionResult;
// DetectTheme never panics and never returns an error directly.
func (d *Detector) DetectTheme(ctx context.Context, rawURL string) models.DetectionResult {
	logger := d.logger.With("request_id", uuid.NewString())

	siteURL := NormalizeURL(rawURL)
	logger = logger.With("url", siteURL)

	if !d.config.DisableCache {
		if result, ok := d.cache.Get(siteURL); ok {
			logger.Debug("cache hit")
			return result
		}
	}

	markup, err := d.fetchWithRetry(ctx, siteURL, logger)
	if err != nil {
		logger.Warn("fetch exhausted", "error", err)
		return models.ErrorResult(classifyFetchError(err))
	}

	if !detection.IsWordPress(markup) {
		logger.Info("no WordPress indicators found")
		return models.ErrorResult(msgNotWordPress)
	}

	match := detection.DetectTheme(siteURL, markup)
	if match.Name == "" {
		logger.Info("WordPress confirmed but theme not identified")
		return models.ErrorResult(msgThemeNotFound)
	}
	logger.Info("theme identified", "theme", match.Name, "method", match.Methods[0])

	theme := &models.ThemeInfo{
		Name:             match.Name,
		ThemeURL:         siteURL + "/wp-content/themes/" + match.Name + "/",
		DetectionMethods: match.Methods,
		IsWordPress:      true,
	}

	if match.StylesheetURL != "" {
		d.enrichFromStylesheet(ctx, theme, match.StylesheetURL, logger)
	}

	theme.Plugins = scanner.ScanPlugins(markup)

	result := models.SuccessResult(theme)
	if !d.config.DisableCache {
		d.cache.Set(siteURL, result)
	}
	return result
}

// ClearCache drops all cached detection results.
func (d *Detector) ClearCache() {
	d.cache.Clear()
}

// CacheStats reports the state of the result cache.
func (d *Detector) CacheStats() models.CacheStats {
	return d.cache.Stats()
}

// fetchWithRetry wraps whole fetcher calls with bounded retries and linearly
// increasing backoff. The last underlying error surfaces after exhaustion.
func (d *Detector) fetchWithRetry(ctx context.Context, siteURL string, logger *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * d.config.RetryBackoff
			logger.Debug("retrying fetch", "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		markup, err := d.fetcher.Fetch(ctx, siteURL)
		if err == nil {
			return markup, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// enrichFromStylesheet fetches the theme stylesheet and merges its header
// metadata into the theme record. The fetch runs on its own goroutine and is
// awaited for a deterministic result; any failure is swallowed because a
// theme name is already established.
func (d *Detector) enrichFromStylesheet(ctx context.Context, theme *models.ThemeInfo, stylesheetURL string, logger *slog.Logger) {
	type headerResult struct {
		meta scanner.ThemeMeta
		err  error
	}

	done := make(chan headerResult, 1)
	go func() {
		css, err := d.fetcher.Fetch(ctx, stylesheetURL)
		if err != nil {
			done <- headerResult{err: err}
			return
		}
		done <- headerResult{meta: scanner.ParseThemeHeader(css)}
	}()

	res := <-done
	if res.err != nil {
		logger.Debug("stylesheet enrichment failed", "stylesheet", stylesheetURL, "error", res.err)
		return
	}

	meta := res.meta
	enriched := false
	if meta.Name != "" {
		theme.Name = meta.Name
		enriched = true
	}
	if meta.Author != "" {
		theme.Author = meta.Author
		enriched = true
	}
	if meta.Version != "" {
		theme.Version = meta.Version
		enriched = true
	}
	if meta.Description != "" {
		theme.Description = meta.Description
		enriched = true
	}
	if meta.URI != "" {
		theme.URI = meta.URI
		enriched = true
	}
	if meta.ChildTheme != nil {
		theme.ChildTheme = meta.ChildTheme
		enriched = true
	}
	if enriched {
		theme.DetectionMethods = append(theme.DetectionMethods, detection.MethodStylesheetHeader)
	}
}

// classifyFetchError maps a fetch failure onto a caller-facing message,
// distinguishing timeouts from generic network failure where detectable.
func classifyFetchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s: %v", msgFetchTimedOut, err)
	}
	return fmt.Sprintf("%s: %v", msgFetchExhausted, err)
}

// NormalizeURL canonicalizes user input so equivalent URLs share one cache
// entry: the scheme defaults to https and fragment, query, and the trailing
// slash are stripped.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		// Fall back to plain string cleanup for unparseable input.
		if i := strings.IndexAny(trimmed, "#?"); i >= 0 {
			trimmed = trimmed[:i]
		}
		return strings.TrimSuffix(trimmed, "/")
	}

	parsed.Fragment = ""
	parsed.RawQuery = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	return parsed.String()
}
