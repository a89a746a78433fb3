package http

import (
	"context"
	"database/sql"
	"net/http"

	"newsletter-api/internal/handler/http/auth"
	"newsletter-api/internal/handler/http/metricsapi"
	"newsletter-api/internal/handler/http/respond"
	"newsletter-api/internal/metrics"
)

// RouterConfig carries everything the route table needs. One instance is
// built at startup and never mutated afterwards.
type RouterConfig struct {
	Collector   metricsapi.Collector
	Gate        *auth.Gate
	DB          *sql.DB
	Environment string
	Version     string
	MaxSamples  int

	// RateLimit and RateBurst throttle the query API per client IP.
	// A zero RateLimit disables throttling.
	RateLimit float64
	RateBurst int

	// BreakerState reports the subscriber store circuit breaker state for
	// the health probe. Optional.
	BreakerState func() string
}

// NewRouter builds the complete route table and wraps it in the auth gate.
// Everything except the liveness probes requires the bearer token; unknown
// paths answer 404 with the API error envelope.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	var queryLimit func(http.Handler) http.Handler
	if cfg.RateLimit > 0 {
		queryLimit = NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware
	}

	metricsapi.Register(mux, instrumentedCollector{cfg.Collector},
		cfg.Environment, cfg.Version, cfg.MaxSamples, queryLimit)

	mux.Handle("GET /internal/metrics", InternalMetricsHandler())

	mux.Handle("GET /health", &HealthHandler{
		DB:           cfg.DB,
		Version:      cfg.Version,
		BreakerState: cfg.BreakerState,
	})
	mux.Handle("GET /ready", &ReadyHandler{DB: cfg.DB})
	mux.Handle("GET /live", &LiveHandler{})

	mux.Handle("/", http.HandlerFunc(notFound))

	return cfg.Gate.Middleware(mux)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respond.APIError(w, http.StatusNotFound, respond.ErrTypeNotFound, "not found")
}

// instrumentedCollector counts degraded snapshots in the server's own
// metrics without the collector knowing about the instrumentation registry.
type instrumentedCollector struct {
	inner metricsapi.Collector
}

func (c instrumentedCollector) Collect(ctx context.Context) *metrics.Snapshot {
	snap := c.inner.Collect(ctx)
	if m, ok := snap.Lookup(metrics.MetricDatabaseStatus); ok && m.Value == 0 {
		RecordStoreReadFailure()
	}
	return snap
}
