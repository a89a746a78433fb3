// Package pathutil provides URL path helpers for HTTP handlers.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization.
var pathPatterns = []*PathPattern{
	// Label values route carries the label name in the path
	{Pattern: regexp.MustCompile(`^/metrics/api/v1/label/[^/]+/values$`), Template: "/metrics/api/v1/label/:name/values"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label
// cardinality explosion. Paths carrying a variable segment (the label-values
// route) collapse to a template; static paths pass through unchanged.
//
// Examples:
//
//	NormalizePath("/metrics/api/v1/label/environment/values") // "/metrics/api/v1/label/:name/values"
//	NormalizePath("/metrics/api/v1/query?query=up")           // "/metrics/api/v1/query"
//	NormalizePath("/metrics")                                 // "/metrics" (unchanged)
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	// Strip trailing slash (but keep root "/")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
