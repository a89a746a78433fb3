package metricsapi

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"newsletter-api/internal/handler/http/respond"
	"newsletter-api/internal/metrics"
)

// Collector builds the per-request snapshot backing every handler in this
// package. Collect never fails; store outages yield a degraded snapshot.
type Collector interface {
	Collect(ctx context.Context) *metrics.Snapshot
}

// TextHandler serves the snapshot in the Prometheus text exposition format.
type TextHandler struct{ Collector Collector }

func (h TextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.Collector.Collect(r.Context())

	// Render to a buffer first so a formatting fault cannot produce a
	// half-written 200 body.
	var buf bytes.Buffer
	if err := metrics.WriteText(&buf, snap); err != nil {
		respond.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", metrics.TextContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// JSONHandler serves the full JSON view of the snapshot.
type JSONHandler struct{ Collector Collector }

func (h JSONHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.Collector.Collect(r.Context())
	respond.JSON(w, http.StatusOK, metrics.ToView(snap))
}

// DatabaseHandler serves the database domain of the snapshot.
type DatabaseHandler struct{ Collector Collector }

func (h DatabaseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.Collector.Collect(r.Context())
	respond.JSON(w, http.StatusOK, metrics.ToDatabaseView(snap))
}

// HealthHandler derives an aggregate health view from the snapshot's up and
// database_status metrics. A degraded store still answers 200: scrapers read
// the status from the body, not the HTTP code.
type HealthHandler struct{ Collector Collector }

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.Collector.Collect(r.Context())

	checks := make(map[string]float64, 2)
	healthy := true
	for _, name := range []string{metrics.MetricUp, metrics.MetricDatabaseStatus} {
		if m, ok := snap.Lookup(name); ok {
			checks[name] = m.Value
			if m.Value != 1 {
				healthy = false
			}
		}
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	respond.JSON(w, http.StatusOK, HealthView{
		OverallStatus: status,
		Environment:   snap.Environment(),
		Timestamp:     snap.GeneratedAt().UTC().Format(time.RFC3339),
		Checks:        checks,
	})
}
