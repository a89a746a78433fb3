// Package metricsapi serves the metrics exposition and query routes. Query
// responses follow the Prometheus HTTP API wire shapes so dashboard tools can
// consume them with a stock prometheus datasource.
package metricsapi

import (
	"encoding/json"
	"time"

	"newsletter-api/internal/metrics"
)

// SamplePair is one (timestamp, value) pair. It marshals as
// [unixSeconds, "value"]: timestamps are float seconds and values are
// strings, per the Prometheus HTTP API.
type SamplePair struct {
	Timestamp time.Time
	Value     float64
}

// MarshalJSON implements json.Marshaler.
func (p SamplePair) MarshalJSON() ([]byte, error) {
	ts := float64(p.Timestamp.UnixMilli()) / 1000
	return json.Marshal([2]any{ts, metrics.FormatValue(p.Value)})
}

// VectorSample is one row of an instant query result.
type VectorSample struct {
	Metric map[string]string `json:"metric"`
	Value  SamplePair        `json:"value"`
}

// MatrixSeries is one row of a range query result.
type MatrixSeries struct {
	Metric map[string]string `json:"metric"`
	Values []SamplePair      `json:"values"`
}

// VectorData is the data payload for instant queries.
type VectorData struct {
	ResultType string         `json:"resultType"`
	Result     []VectorSample `json:"result"`
}

// MatrixData is the data payload for range queries.
type MatrixData struct {
	ResultType string         `json:"resultType"`
	Result     []MatrixSeries `json:"result"`
}

// HealthView is the body served by the metrics health route.
type HealthView struct {
	OverallStatus string             `json:"overall_status"`
	Environment   string             `json:"environment"`
	Timestamp     string             `json:"timestamp"`
	Checks        map[string]float64 `json:"checks"`
}

// BuildInfo is the data payload for the buildinfo route. The fields mirror
// Prometheus's own status endpoint so datasource health checks pass.
type BuildInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Branch    string `json:"branch"`
	BuildUser string `json:"buildUser"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}
