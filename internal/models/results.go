// Package models contains the shared result types for WordPress theme detection.
package models

import "strings"

// ChildTheme describes a child theme and the parent template it builds on.
type ChildTheme struct {
	// Name of the child theme, or "Unknown Child Theme" when the stylesheet
	// header carried a Template line but no Theme Name
	Name string `json:"name"`
	// Parent is the template directory slug the child theme inherits from
	Parent string `json:"parent"`
}

// ThemeInfo represents everything that could be extracted about the active theme.
// All fields except IsWordPress are optional; absence of a field means the
// corresponding heuristic found nothing.
type ThemeInfo struct {
	// Name is the theme directory slug
	Name string `json:"name,omitempty"`
	// Author from the stylesheet header
	Author string `json:"author,omitempty"`
	// Version from the stylesheet header
	Version string `json:"version,omitempty"`
	// Description from the stylesheet header
	Description string `json:"description,omitempty"`
	// URI is the Theme URI from the stylesheet header
	URI string `json:"uri,omitempty"`
	// ThemeURL is the derived theme directory URL on the analyzed site
	ThemeURL string `json:"theme_url,omitempty"`
	// DetectionMethods lists the cascade methods that contributed, in order
	DetectionMethods []string `json:"detection_methods,omitempty"`
	// Plugins lists detected plugin directory slugs, deduplicated and bounded
	Plugins []string `json:"plugins,omitempty"`
	// ChildTheme is set when the stylesheet header declared a parent template
	ChildTheme *ChildTheme `json:"child_theme,omitempty"`
	// IsWordPress is true exactly when the record represents a successful detection
	IsWordPress bool `json:"is_wordpress"`
}

// DetectionMethod joins the contributing method labels for display.
func (t *ThemeInfo) DetectionMethod() string {
	return strings.Join(t.DetectionMethods, ", ")
}

// Clone returns a deep copy so cached records are never aliased to callers.
func (t *ThemeInfo) Clone() *ThemeInfo {
	if t == nil {
		return nil
	}
	clone := *t
	if t.DetectionMethods != nil {
		clone.DetectionMethods = append([]string(nil), t.DetectionMethods...)
	}
	if t.Plugins != nil {
		clone.Plugins = append([]string(nil), t.Plugins...)
	}
	if t.ChildTheme != nil {
		child := *t.ChildTheme
		clone.ChildTheme = &child
	}
	return &clone
}

// DetectionResult is the tagged outcome of a detection attempt. Exactly one of
// Theme and Error is populated.
type DetectionResult struct {
	// Success indicates whether detection completed with an identified theme
	Success bool `json:"success"`
	// Theme holds the detected theme data on success
	Theme *ThemeInfo `json:"theme,omitempty"`
	// Error carries the failure classification message on non-success
	Error string `json:"error,omitempty"`
}

// SuccessResult wraps an identified theme in a successful DetectionResult.
func SuccessResult(theme *ThemeInfo) DetectionResult {
	return DetectionResult{Success: true, Theme: theme}
}

// ErrorResult builds a non-success DetectionResult with a classification message.
func ErrorResult(message string) DetectionResult {
	return DetectionResult{Success: false, Error: message}
}

// Clone returns a deep copy of the result.
func (r DetectionResult) Clone() DetectionResult {
	clone := r
	clone.Theme = r.Theme.Clone()
	return clone
}

// CacheStats reports the state of the result cache for diagnostics.
type CacheStats struct {
	// Size is the number of live entries
	Size int `json:"size"`
	// Entries lists the cached normalized URLs
	Entries []string `json:"entries"`
}
