package auth

import "strings"

// PublicEndpoints defines endpoints that don't require authentication.
//
// Justification for each public endpoint:
// - /health, /ready, /live: required for orchestration health checks; the
//   liveness probe in particular must answer before any secret is available
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
}

// IsPublicEndpoint checks if a given path is a public endpoint.
// Public endpoints can be accessed without authentication.
//
// Matching logic:
// - Endpoints ending with '/' use prefix matching
// - Endpoints without '/' require exact match, trailing slash, or query
//   params only (e.g. /health matches /health?x=1 but not /health/detail)
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}

		if path == endpoint {
			return true
		}
		if path == endpoint+"/" {
			return true
		}
		if strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}
