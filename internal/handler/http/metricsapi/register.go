package metricsapi

import (
	"net/http"
)

// Register registers the metrics exposition and query API handlers with the
// given mux. queryLimit optionally wraps the query routes with a rate
// limiter; the exposition routes stay unlimited so scrape intervals are
// never throttled.
func Register(mux *http.ServeMux, collector Collector, env, version string, maxSamples int, queryLimit func(http.Handler) http.Handler) {
	if queryLimit == nil {
		queryLimit = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("GET /metrics", TextHandler{collector})
	mux.Handle("GET /metrics/json", JSONHandler{collector})
	mux.Handle("GET /metrics/database", DatabaseHandler{collector})
	mux.Handle("GET /metrics/health", HealthHandler{collector})

	mux.Handle("GET /metrics/api/v1/query", queryLimit(QueryHandler{collector}))
	mux.Handle("GET /metrics/api/v1/query_range", queryLimit(QueryRangeHandler{
		Collector:  collector,
		MaxSamples: maxSamples,
	}))

	mux.Handle("GET /metrics/api/v1/labels", LabelsHandler{})
	mux.Handle("GET /metrics/api/v1/label/{name}/values", LabelValuesHandler{
		Collector:   collector,
		Environment: env,
	})
	mux.Handle("GET /metrics/api/v1/status/buildinfo", BuildInfoHandler{Version: version})
}
