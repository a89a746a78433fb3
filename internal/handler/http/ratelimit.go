package http

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"newsletter-api/internal/handler/http/respond"
)

// maxRateLimitKeys bounds the tracked client set. When exceeded, the whole
// table is dropped; well-behaved clients immediately re-enter with a full
// token bucket, so the reset is invisible to them.
const maxRateLimitKeys = 10000

// RateLimiter applies per-client-IP rate limiting using token buckets.
// The query endpoints are the main consumers: range query synthesis is the
// most expensive in-memory work in the service and a misconfigured dashboard
// can refresh aggressively.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a rate limiter allowing limit requests per second
// with the given burst per client IP.
func NewRateLimiter(limit float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(limit),
		burst:    burst,
	}
}

// Middleware rejects requests over the per-IP budget with 429 and a
// Prometheus error envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			respond.APIError(w, http.StatusTooManyRequests, respond.ErrTypeBadData, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) >= maxRateLimitKeys {
		rl.limiters = make(map[string]*rate.Limiter)
	}
	lim, ok := rl.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[ip] = lim
	}
	return lim.Allow()
}

// clientIP extracts the client IP address from the HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first IP address from a comma-separated list.
func parseFirstIP(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			ip := net.ParseIP(s[:i])
			if ip != nil {
				return ip.String()
			}
			return ""
		}
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
