// Package auth implements the bearer-token gate protecting the metrics and
// query API. Tokens are opaque per-environment secrets provisioned
// out-of-band (the Grafana datasource carries one in its Authorization
// header); there is no token issuance or session state here.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"newsletter-api/internal/handler/http/respond"
)

const bearerPrefix = "Bearer "

// Gate validates the Authorization header against the configured secret.
type Gate struct {
	secret []byte
}

// NewGate creates a gate for the given secret. The secret must already have
// passed startup validation; see ValidateMetricsToken.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Middleware requires a valid bearer token for every request except public
// endpoints. Missing or mismatched tokens get a 401 Prometheus error
// envelope; the response never reflects the expected secret or the supplied
// token back to the client.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if !g.Authorize(r.Header.Get("Authorization")) {
			respond.APIError(w, http.StatusUnauthorized, respond.ErrTypeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize reports whether the Authorization header value carries the
// expected bearer token. The comparison is constant-time so response timing
// does not leak how much of the token matched.
func (g *Gate) Authorize(authz string) bool {
	if !strings.HasPrefix(authz, bearerPrefix) {
		return false
	}
	token := strings.TrimPrefix(authz, bearerPrefix)
	return subtle.ConstantTimeCompare([]byte(token), g.secret) == 1
}
