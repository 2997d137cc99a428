package themescan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themescan/go-themescan/internal/fetcher"
)

const wpMarkup = `<!DOCTYPE html>
<html>
<head>
<meta name="generator" content="WordPress 6.4">
<link rel="stylesheet" href="/wp-content/themes/twentytwentyone/style.css?ver=1.4">
<link rel="stylesheet" href="/wp-content/plugins/contact-form-7/includes/css/styles.css">
<script src="/wp-content/plugins/akismet/js/akismet.js"></script>
<script src="/wp-includes/js/jquery/jquery.min.js"></script>
</head>
<body class="home theme-twentytwentyone">
<p>Just another WordPress site.</p>
</body>
</html>`

const themeStylesheet = `/*
Theme Name: Twenty Twenty-One
Theme URI: https://wordpress.org/themes/twentytwentyone/
Author: the WordPress team
Description: Twenty Twenty-One is a blank canvas for your ideas.
Version: 1.4
*/
body { margin: 0; }`

// newTestDetector builds a detector with no relay fallback and fast retries,
// suitable for httptest-backed runs.
func newTestDetector(options ...Option) *Detector {
	base := []Option{
		WithRelays([]fetcher.Relay{}),
		WithRetryBackoff(time.Millisecond),
		WithDirectTimeout(2 * time.Second),
	}
	return New(append(base, options...)...)
}

// newWordPressServer serves the standard WordPress fixture, counting page loads.
func newWordPressServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var pageLoads atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			pageLoads.Add(1)
			fmt.Fprint(w, wpMarkup)
		case "/wp-content/themes/twentytwentyone/style.css":
			fmt.Fprint(w, themeStylesheet)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &pageLoads
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"https://example.com/", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"example.com/blog/", "https://example.com/blog"},
		{"https://example.com/?utm_source=x", "https://example.com"},
		{"https://example.com/#section", "https://example.com"},
		{"  example.com  ", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}

func TestDetectThemeEndToEnd(t *testing.T) {
	server, _ := newWordPressServer(t)

	detector := newTestDetector()
	result := detector.DetectTheme(context.Background(), server.URL)

	require.True(t, result.Success, "expected success, got error: %s", result.Error)
	theme := result.Theme
	require.NotNil(t, theme)
	assert.True(t, theme.IsWordPress)

	// Name and details come from the stylesheet header enrichment
	assert.Equal(t, "Twenty Twenty-One", theme.Name)
	assert.Equal(t, "the WordPress team", theme.Author)
	assert.Equal(t, "1.4", theme.Version)
	assert.Equal(t, "https://wordpress.org/themes/twentytwentyone/", theme.URI)
	assert.Equal(t, server.URL+"/wp-content/themes/twentytwentyone/", theme.ThemeURL)

	assert.Equal(t, []string{"stylesheet link", "stylesheet header"}, theme.DetectionMethods)
	assert.Equal(t, []string{"contact-form-7", "akismet"}, theme.Plugins)
}

func TestDetectThemeSurvivesEnrichmentFailure(t *testing.T) {
	// The stylesheet 404s; the name found by the link method must stand.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, wpMarkup)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	detector := newTestDetector()
	result := detector.DetectTheme(context.Background(), server.URL)

	require.True(t, result.Success)
	assert.Equal(t, "twentytwentyone", result.Theme.Name)
	assert.Equal(t, []string{"stylesheet link"}, result.Theme.DetectionMethods)
	assert.Empty(t, result.Theme.Author)
}

func TestDetectThemeNotWordPress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Plain</title></head><body>`+strings.Repeat("static site ", 30)+`</body></html>`)
	}))
	defer server.Close()

	detector := newTestDetector()
	result := detector.DetectTheme(context.Background(), server.URL)

	require.False(t, result.Success)
	assert.Equal(t, msgNotWordPress, result.Error)
	assert.Nil(t, result.Theme)

	// Negative classifications are not cached
	assert.Equal(t, 0, detector.CacheStats().Size)
}

func TestDetectThemeUnidentified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script src="/wp-includes/js/jquery/jquery.min.js"></script></head><body>blog</body></html>`)
	}))
	defer server.Close()

	detector := newTestDetector()
	result := detector.DetectTheme(context.Background(), server.URL)

	require.False(t, result.Success)
	assert.Equal(t, msgThemeNotFound, result.Error)
}

func TestDetectThemeCacheRoundTrip(t *testing.T) {
	server, pageLoads := newWordPressServer(t)

	detector := newTestDetector()
	first := detector.DetectTheme(context.Background(), server.URL)
	require.True(t, first.Success)
	require.EqualValues(t, 1, pageLoads.Load())

	// Equivalent inputs share the cache entry: no second page load
	second := detector.DetectTheme(context.Background(), server.URL+"/")
	require.True(t, second.Success)
	assert.EqualValues(t, 1, pageLoads.Load())
	assert.Equal(t, first.Theme.Name, second.Theme.Name)

	stats := detector.CacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, []string{server.URL}, stats.Entries)

	detector.ClearCache()
	assert.Equal(t, 0, detector.CacheStats().Size)

	third := detector.DetectTheme(context.Background(), server.URL)
	require.True(t, third.Success)
	assert.EqualValues(t, 2, pageLoads.Load())
}

func TestDetectThemeRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && attempts.Add(1) <= 2 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/" {
			fmt.Fprint(w, wpMarkup)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	detector := newTestDetector(WithMaxRetries(2))
	result := detector.DetectTheme(context.Background(), server.URL)

	require.True(t, result.Success, "third attempt should succeed: %s", result.Error)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestDetectThemeRetriesExhausted(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "down for good", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	detector := newTestDetector(WithMaxRetries(2))
	result := detector.DetectTheme(context.Background(), server.URL)

	require.False(t, result.Success)
	assert.EqualValues(t, 3, attempts.Load(), "initial attempt plus two retries")
	// The final underlying error surfaces in the message
	assert.Contains(t, result.Error, "503")
}

func TestDetectThemeWithoutCache(t *testing.T) {
	server, pageLoads := newWordPressServer(t)

	detector := newTestDetector(WithoutCache())
	require.True(t, detector.DetectTheme(context.Background(), server.URL).Success)
	require.True(t, detector.DetectTheme(context.Background(), server.URL).Success)
	assert.EqualValues(t, 2, pageLoads.Load())
}
