package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themescan/go-themescan/internal/models"
)

func successResult(name string) models.DetectionResult {
	return models.SuccessResult(&models.ThemeInfo{
		Name:        name,
		IsWordPress: true,
		Plugins:     []string{"akismet"},
	})
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New(DefaultTTL, DefaultCapacity)

	_, ok := c.Get("https://example.com")
	require.False(t, ok, "empty cache should miss")

	c.Set("https://example.com", successResult("twentytwentyone"))

	result, ok := c.Get("https://example.com")
	require.True(t, ok)
	require.True(t, result.Success)
	assert.Equal(t, "twentytwentyone", result.Theme.Name)
	assert.Equal(t, []string{"akismet"}, result.Theme.Plugins)
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	c := New(5*time.Minute, DefaultCapacity)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("https://example.com", successResult("astra"))

	// Still fresh just inside the TTL
	c.now = func() time.Time { return base.Add(5 * time.Minute) }
	_, ok := c.Get("https://example.com")
	assert.True(t, ok)

	// Stale beyond the TTL: miss, and the entry is gone
	c.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	_, ok = c.Get("https://example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCapacityEvictsInsertionOldest(t *testing.T) {
	c := New(DefaultTTL, 3)

	base := time.Now()
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("https://site%d.com", i), successResult("theme"))
	}

	stats := c.Stats()
	require.Equal(t, 3, stats.Size, "entry count must never exceed the capacity")

	// The first-inserted entry was evicted; the rest survive
	_, ok := c.Get("https://site0.com")
	assert.False(t, ok)
	for i := 1; i < 4; i++ {
		_, ok := c.Get(fmt.Sprintf("https://site%d.com", i))
		assert.True(t, ok, "site%d should still be cached", i)
	}
}

func TestReturnedResultsAreCopies(t *testing.T) {
	c := New(DefaultTTL, DefaultCapacity)
	c.Set("https://example.com", successResult("astra"))

	first, ok := c.Get("https://example.com")
	require.True(t, ok)
	first.Theme.Name = "mutated"
	first.Theme.Plugins[0] = "mutated"

	second, ok := c.Get("https://example.com")
	require.True(t, ok)
	assert.Equal(t, "astra", second.Theme.Name)
	assert.Equal(t, "akismet", second.Theme.Plugins[0])
}

func TestClearAndStats(t *testing.T) {
	c := New(DefaultTTL, DefaultCapacity)
	c.Set("https://a.com", successResult("a"))
	c.Set("https://b.com", successResult("b"))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.ElementsMatch(t, []string{"https://a.com", "https://b.com"}, stats.Entries)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
}
