package detection

import (
	"regexp"
	"strings"
)

// Method labels recorded in DetectionMethods, in cascade priority order.
const (
	MethodStylesheetLink    = "stylesheet link"
	MethodPathFrequency     = "theme path frequency"
	MethodGenericStylesheet = "generic stylesheet pattern"
	MethodBodyClass         = "body class marker"

	// MethodStylesheetHeader labels the metadata enrichment step that runs
	// after a name has been found
	MethodStylesheetHeader = "stylesheet header"
)

var (
	// Canonical style.css link, with an optional absolute prefix so the
	// stylesheet can be fetched from wherever the page references it.
	stylesheetLinkRegex = regexp.MustCompile(`(?i)(https?://[^"'\s>]+)?(/wp-content/themes/([A-Za-z0-9_.-]+)/style(?:\.min)?\.css[^"'\s>]*)`)

	// Any theme-directory-relative CSS reference.
	genericStylesheetRegex = regexp.MustCompile(`(?i)/wp-content/themes/([A-Za-z0-9_.-]+)/[^"'\s>]*\.css`)

	// theme-<slug> class on the document root element.
	bodyClassRegex = regexp.MustCompile(`(?i)class=["'][^"']*\btheme-([A-Za-z0-9_-]+)`)

	themeOccurrenceRegex = regexp.MustCompile(`/wp-content/themes/([A-Za-z0-9_.-]+)`)
)

// nonThemeSegments are directory names under wp-content/themes that never
// identify a theme.
var nonThemeSegments = map[string]struct{}{
	"index.php":  {},
	"uploads":    {},
	"cache":      {},
	"mu-plugins": {},
}

// Match is the outcome of running the cascade over fetched markup.
type Match struct {
	// Name is the detected theme directory slug, empty when no method matched
	Name string

	// StylesheetURL is the resolvable style.css URL when the stylesheet link
	// method matched, for header metadata enrichment
	StylesheetURL string

	// Methods lists the labels of the methods that contributed, in order
	Methods []string
}

// method pairs a label with its extractor. Extractors return the detected
// slug plus an optional stylesheet URL for enrichment.
type method struct {
	label  string
	detect func(siteURL, markup string) (name, stylesheetURL string)
}

// cascade is the ordered method list; earlier methods are higher confidence.
var cascade = []method{
	{MethodStylesheetLink, detectStylesheetLink},
	{MethodPathFrequency, detectPathFrequency},
	{MethodGenericStylesheet, detectGenericStylesheet},
	{MethodBodyClass, detectBodyClass},
}

// DetectTheme runs the cascade against the markup, stopping at the first
// method that produces a theme name.
func DetectTheme(siteURL, markup string) Match {
	for _, m := range cascade {
		name, stylesheetURL := m.detect(siteURL, markup)
		if name == "" {
			continue
		}
		return Match{
			Name:          name,
			StylesheetURL: stylesheetURL,
			Methods:       []string{m.label},
		}
	}
	return Match{}
}

// detectStylesheetLink locates the canonical style.css reference. The theme
// directory segment is the theme name.
func detectStylesheetLink(siteURL, markup string) (string, string) {
	match := stylesheetLinkRegex.FindStringSubmatch(markup)
	if match == nil {
		return "", ""
	}
	name := match[3]
	if _, excluded := nonThemeSegments[name]; excluded {
		return "", ""
	}

	stylesheetURL := match[2]
	if match[1] != "" {
		stylesheetURL = match[1] + match[2]
	} else {
		stylesheetURL = strings.TrimSuffix(siteURL, "/") + stylesheetURL
	}
	return name, stylesheetURL
}

// detectPathFrequency picks the most frequently referenced theme directory.
func detectPathFrequency(_ string, markup string) (string, string) {
	matches := themeOccurrenceRegex.FindAllStringSubmatch(markup, -1)
	if len(matches) == 0 {
		return "", ""
	}

	counts := make(map[string]int)
	var order []string
	for _, match := range matches {
		slug := match[1]
		if _, excluded := nonThemeSegments[slug]; excluded {
			continue
		}
		if counts[slug] == 0 {
			order = append(order, slug)
		}
		counts[slug]++
	}

	// First-seen wins ties.
	var best string
	for _, slug := range order {
		if best == "" || counts[slug] > counts[best] {
			best = slug
		}
	}
	return best, ""
}

// detectGenericStylesheet matches any theme-relative CSS reference, not just
// the canonical style.css.
func detectGenericStylesheet(_ string, markup string) (string, string) {
	match := genericStylesheetRegex.FindStringSubmatch(markup)
	if match == nil {
		return "", ""
	}
	if _, excluded := nonThemeSegments[match[1]]; excluded {
		return "", ""
	}
	return match[1], ""
}

// detectBodyClass looks for the theme-<slug> class WordPress places on the
// document root element.
func detectBodyClass(_ string, markup string) (string, string) {
	match := bodyClassRegex.FindStringSubmatch(markup)
	if match == nil {
		return "", ""
	}
	return match[1], ""
}
