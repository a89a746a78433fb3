package metricsapi

import (
	"net/http"
	"runtime"

	"newsletter-api/internal/handler/http/respond"
)

// LabelsHandler lists the label names present on the served metrics. The
// label set is fixed, so no snapshot is collected.
type LabelsHandler struct{}

func (h LabelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.Success(w, []string{"__name__", "environment"})
}

// LabelValuesHandler lists the values of one label. Dashboard tools probe
// __name__ to populate their metric pickers.
type LabelValuesHandler struct {
	Collector   Collector
	Environment string
}

func (h LabelValuesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("name") {
	case "__name__":
		snap := h.Collector.Collect(r.Context())
		names := make([]string, 0, len(snap.Metrics()))
		for _, m := range snap.Metrics() {
			names = append(names, m.Name)
		}
		respond.Success(w, names)
	case "environment":
		respond.Success(w, []string{h.Environment})
	default:
		// Unknown labels are valid but have no values.
		respond.Success(w, []string{})
	}
}

// BuildInfoHandler answers the datasource compatibility probe.
type BuildInfoHandler struct{ Version string }

func (h BuildInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.Success(w, BuildInfo{
		Version:   h.Version,
		GoVersion: runtime.Version(),
	})
}
