package metricsapi

import (
	"fmt"
	"net/http"
	"time"

	"newsletter-api/internal/handler/http/respond"
	"newsletter-api/internal/metrics/promql"
)

// QueryHandler evaluates an instant query against a fresh snapshot.
type QueryHandler struct{ Collector Collector }

func (h QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData,
			"query parameter is required")
		return
	}

	expr, err := promql.Parse(q)
	if err != nil {
		respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData, err.Error())
		return
	}

	snap := h.Collector.Collect(r.Context())

	// The optional time parameter only stamps the returned samples; every
	// value still comes from the current snapshot.
	ts := snap.GeneratedAt()
	if s := r.URL.Query().Get("time"); s != "" {
		ts, err = parseTime(s)
		if err != nil {
			respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData,
				fmt.Sprintf("invalid time parameter: %v", err))
			return
		}
	}

	res := promql.Eval(expr, snap)
	respond.Success(w, vectorData(res, ts))
}

// vectorData converts an evaluation result into the instant query payload.
// An empty result yields an empty, non-nil result list so the JSON renders
// as [] rather than null.
func vectorData(res promql.Result, ts time.Time) VectorData {
	samples := make([]VectorSample, 0, len(res.Samples))
	for _, s := range res.Samples {
		labels := s.Labels
		if labels == nil {
			labels = map[string]string{}
		}
		samples = append(samples, VectorSample{
			Metric: labels,
			Value:  SamplePair{Timestamp: ts, Value: s.Value},
		})
	}
	return VectorData{ResultType: "vector", Result: samples}
}

// QueryRangeHandler evaluates a query over a time window, synthesizing a
// flat matrix from the current snapshot values.
type QueryRangeHandler struct {
	Collector  Collector
	MaxSamples int
}

func (h QueryRangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := params.Get("query")
	if q == "" {
		respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData,
			"query parameter is required")
		return
	}

	expr, err := promql.Parse(q)
	if err != nil {
		respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData, err.Error())
		return
	}

	rng, err := parseRange(params.Get("start"), params.Get("end"), params.Get("step"))
	if err != nil {
		respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData, err.Error())
		return
	}
	if err := rng.Validate(h.MaxSamples); err != nil {
		respond.APIError(w, http.StatusBadRequest, respond.ErrTypeBadData, err.Error())
		return
	}

	snap := h.Collector.Collect(r.Context())
	series := promql.Synthesize(promql.Eval(expr, snap), rng)

	result := make([]MatrixSeries, 0, len(series))
	for _, s := range series {
		labels := s.Labels
		if labels == nil {
			labels = map[string]string{}
		}
		values := make([]SamplePair, 0, len(s.Points))
		for _, p := range s.Points {
			values = append(values, SamplePair{Timestamp: p.Timestamp, Value: p.Value})
		}
		result = append(result, MatrixSeries{Metric: labels, Values: values})
	}

	respond.Success(w, MatrixData{ResultType: "matrix", Result: result})
}

// parseRange parses and assembles the start/end/step parameters. Window and
// step invariants are checked separately by Range.Validate.
func parseRange(start, end, step string) (promql.Range, error) {
	var rng promql.Range

	if start == "" || end == "" || step == "" {
		return rng, fmt.Errorf("start, end and step parameters are required")
	}

	var err error
	if rng.Start, err = parseTime(start); err != nil {
		return rng, fmt.Errorf("invalid start parameter: %w", err)
	}
	if rng.End, err = parseTime(end); err != nil {
		return rng, fmt.Errorf("invalid end parameter: %w", err)
	}
	if rng.Step, err = parseStep(step); err != nil {
		return rng, fmt.Errorf("invalid step parameter: %w", err)
	}
	return rng, nil
}
