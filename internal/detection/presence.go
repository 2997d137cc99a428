// Package detection identifies the active WordPress theme in fetched markup
// through an ordered cascade of pattern-matching heuristics.
package detection

import "strings"

// presenceIndicators are high-confidence substrings that signal a WordPress
// site. Matching any single one confirms the platform.
var presenceIndicators = []string{
	"/wp-content/",
	"/wp-includes/",
	"wp-json",
	`name="generator" content="WordPress`,
	"wp-embed.min.js",
}

// IsWordPress reports whether the markup contains any WordPress presence
// indicator.
func IsWordPress(markup string) bool {
	for _, indicator := range presenceIndicators {
		if strings.Contains(markup, indicator) {
			return true
		}
	}
	return false
}
