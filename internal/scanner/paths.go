package scanner

import "regexp"

const (
	// MaxPlugins bounds the plugin list returned by ScanPlugins
	MaxPlugins = 10

	// MaxThemes bounds the theme directory list returned by ScanThemes
	MaxThemes = 5
)

var (
	pluginPathRegex = regexp.MustCompile(`/wp-content/plugins/([^/"'?\s)]+)`)
	themePathRegex  = regexp.MustCompile(`/wp-content/themes/([^/"'?\s)]+)`)

	// Path segments that appear under the plugin/theme directories but do not
	// identify an installed plugin or theme.
	excludedSegments = map[string]struct{}{
		"index.php":  {},
		"uploads":    {},
		"cache":      {},
		"mu-plugins": {},
	}
)

// ScanPlugins returns the plugin directory slugs referenced anywhere in the
// markup, deduplicated in order of first occurrence and capped at MaxPlugins.
func ScanPlugins(markup string) []string {
	return scanPaths(markup, pluginPathRegex, MaxPlugins)
}

// ScanThemes returns the theme directory slugs referenced anywhere in the
// markup, deduplicated in order of first occurrence and capped at MaxThemes.
func ScanThemes(markup string) []string {
	return scanPaths(markup, themePathRegex, MaxThemes)
}

func scanPaths(markup string, re *regexp.Regexp, limit int) []string {
	matches := re.FindAllStringSubmatch(markup, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var results []string
	for _, match := range matches {
		slug := match[1]
		if _, excluded := excludedSegments[slug]; excluded {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		results = append(results, slug)
		if len(results) >= limit {
			break
		}
	}
	return results
}
