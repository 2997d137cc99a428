// Package scanner extracts theme and plugin metadata from raw markup and
// stylesheet text using pattern matching. It deliberately avoids full HTML/CSS
// parsing; WordPress asset conventions make plain patterns reliable.
package scanner

import (
	"regexp"
	"strings"

	"github.com/themescan/go-themescan/internal/models"
)

// headerSearchWindow caps how far into the stylesheet the header comment is
// searched for. Theme headers always open the file.
const headerSearchWindow = 2000

// UnknownChildTheme is the fallback name for a child theme whose stylesheet
// header carried a Template line but no Theme Name.
const UnknownChildTheme = "Unknown Child Theme"

var (
	blockCommentRegex = regexp.MustCompile(`(?s)/\*(.*?)\*/`)

	themeNameRegex   = regexp.MustCompile(`(?i)Theme Name:\s*(.+)`)
	authorRegex      = regexp.MustCompile(`(?i)Author:\s*(.+)`)
	versionRegex     = regexp.MustCompile(`(?i)Version:\s*(.+)`)
	descriptionRegex = regexp.MustCompile(`(?i)Description:\s*(.+)`)
	themeURIRegex    = regexp.MustCompile(`(?i)Theme URI:\s*(.+)`)
	templateRegex    = regexp.MustCompile(`(?i)Template:\s*(.+)`)
)

// ThemeMeta holds the fields extracted from a stylesheet header comment.
// Every field is optional; extraction of one field never depends on another.
type ThemeMeta struct {
	Name        string
	Author      string
	Version     string
	Description string
	URI         string
	ChildTheme  *models.ChildTheme
}

// ParseThemeHeader extracts theme metadata from the leading comment block of
// stylesheet content. It is total: any input yields a (possibly empty) result.
func ParseThemeHeader(css string) ThemeMeta {
	var meta ThemeMeta

	window := css
	if len(window) > headerSearchWindow {
		window = window[:headerSearchWindow]
	}

	match := blockCommentRegex.FindStringSubmatch(window)
	if match == nil {
		return meta
	}
	header := match[1]

	meta.Name = matchField(themeNameRegex, header)
	meta.Author = matchField(authorRegex, header)
	meta.Version = matchField(versionRegex, header)
	meta.Description = matchField(descriptionRegex, header)
	meta.URI = matchField(themeURIRegex, header)

	if template := matchField(templateRegex, header); template != "" {
		name := meta.Name
		if name == "" {
			name = UnknownChildTheme
		}
		meta.ChildTheme = &models.ChildTheme{Name: name, Parent: template}
	}

	return meta
}

// matchField applies a single header line pattern and trims the captured value.
func matchField(re *regexp.Regexp, header string) string {
	match := re.FindStringSubmatch(header)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
