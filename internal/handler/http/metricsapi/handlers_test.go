package metricsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-api/internal/metrics"
)

var snapTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// staticCollector serves a fixed snapshot regardless of context.
type staticCollector struct{ snap *metrics.Snapshot }

func (c staticCollector) Collect(ctx context.Context) *metrics.Snapshot { return c.snap }

func healthySnapshot(t *testing.T) *metrics.Snapshot {
	t.Helper()
	labels := map[string]string{"environment": "local"}
	snap, err := metrics.NewSnapshot(snapTime, []metrics.Metric{
		{Name: metrics.MetricUp, Kind: metrics.KindGauge, Help: "Up.", Value: 1, Labels: labels},
		{Name: metrics.MetricDatabaseStatus, Kind: metrics.KindGauge, Help: "DB.", Value: 1, Labels: labels},
		{Name: metrics.MetricSubscribersTotal, Kind: metrics.KindGauge, Help: "Total.", Value: 7, Labels: labels},
		{Name: metrics.MetricSubscribersActive, Kind: metrics.KindGauge, Help: "Active.", Value: 5, Labels: labels},
		{Name: metrics.MetricSubscriptions24h, Kind: metrics.KindGauge, Help: "New.", Value: 2, Labels: labels},
		{Name: metrics.MetricUnsubscribes24h, Kind: metrics.KindGauge, Help: "Gone.", Value: 1, Labels: labels},
	})
	require.NoError(t, err)
	return snap
}

func degradedSnapshot(t *testing.T) *metrics.Snapshot {
	t.Helper()
	labels := map[string]string{"environment": "local"}
	snap, err := metrics.NewSnapshot(snapTime, []metrics.Metric{
		{Name: metrics.MetricUp, Kind: metrics.KindGauge, Help: "Up.", Value: 1, Labels: labels},
		{Name: metrics.MetricDatabaseStatus, Kind: metrics.KindGauge, Help: "DB.", Value: 0, Labels: labels},
	})
	require.NoError(t, err)
	return snap
}

func newTestMux(t *testing.T, snap *metrics.Snapshot) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	Register(mux, staticCollector{snap}, "local", "1.2.3", 11000, nil)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the Prometheus HTTP API response wrapper.
type envelope struct {
	Status    string          `json:"status"`
	ErrorType string          `json:"errorType"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
}

type wireSample struct {
	Metric map[string]string `json:"metric"`
	Value  []any             `json:"value"`
	Values [][]any           `json:"values"`
}

type wireData struct {
	ResultType string       `json:"resultType"`
	Result     []wireSample `json:"result"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeQueryData(t *testing.T, env envelope) wireData {
	t.Helper()
	var data wireData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestTextHandler(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, metrics.TextContentType, rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "# TYPE up gauge")
	assert.Contains(t, body, `up{environment="local"} 1`)
	assert.Contains(t, body, `newsletter_subscribers_total{environment="local"} 7`)
}

func TestTextHandler_DegradedStoreStillAnswers200(t *testing.T) {
	rec := get(t, newTestMux(t, degradedSnapshot(t)), "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `database_status{environment="local"} 0`)
	assert.NotContains(t, rec.Body.String(), "newsletter_subscribers_total")
}

func TestJSONHandler(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var view metrics.SnapshotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	assert.Equal(t, "local", view.Environment)
	assert.Equal(t, "2025-06-01T12:00:00Z", view.Timestamp)
	assert.Equal(t, 1.0, view.Database.Status)
	require.NotNil(t, view.Subscribers)
	assert.Equal(t, 7.0, view.Subscribers.Total)
	assert.Equal(t, 5.0, view.Subscribers.Active)
}

func TestDatabaseHandler(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/database")
	require.Equal(t, http.StatusOK, rec.Code)

	var view metrics.DatabaseSnapshotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1.0, view.Database.Status)
	assert.Equal(t, "local", view.Environment)
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/health")
		require.Equal(t, http.StatusOK, rec.Code)

		var view HealthView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "healthy", view.OverallStatus)
		assert.Equal(t, 1.0, view.Checks["database_status"])
	})

	t.Run("degraded", func(t *testing.T) {
		rec := get(t, newTestMux(t, degradedSnapshot(t)), "/metrics/health")
		require.Equal(t, http.StatusOK, rec.Code, "health stays 200; the body carries the status")

		var view HealthView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "degraded", view.OverallStatus)
		assert.Equal(t, 0.0, view.Checks["database_status"])
	})
}

func TestQueryHandler_Arithmetic(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/api/v1/query?query=1%2B1")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)

	data := decodeQueryData(t, env)
	assert.Equal(t, "vector", data.ResultType)
	require.Len(t, data.Result, 1)
	assert.Empty(t, data.Result[0].Metric)
	assert.Equal(t, "2", data.Result[0].Value[1])
}

func TestQueryHandler_Metric(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/api/v1/query?query=up")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeQueryData(t, decodeEnvelope(t, rec))
	require.Len(t, data.Result, 1)

	row := data.Result[0]
	assert.Equal(t, "up", row.Metric["__name__"])
	assert.Equal(t, "local", row.Metric["environment"])
	require.Len(t, row.Value, 2)
	assert.Equal(t, float64(snapTime.Unix()), row.Value[0])
	assert.Equal(t, "1", row.Value[1])
}

func TestQueryHandler_UnknownMetric(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/api/v1/query?query=no_such_metric")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "success", env.Status, "unknown metrics are valid-but-empty queries")

	data := decodeQueryData(t, env)
	assert.NotNil(t, data.Result)
	assert.Empty(t, data.Result)
}

func TestQueryHandler_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing query", "/metrics/api/v1/query"},
		{"empty query", "/metrics/api/v1/query?query="},
		{"trailing operator", "/metrics/api/v1/query?query=1%2B"},
		{"label matcher", "/metrics/api/v1/query?query=" + url.QueryEscape(`up{environment="local"}`)},
		{"bad time parameter", "/metrics/api/v1/query?query=up&time=yesterday"},
	}

	mux := newTestMux(t, healthySnapshot(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, mux, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			env := decodeEnvelope(t, rec)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, "bad_data", env.ErrorType)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestQueryRangeHandler(t *testing.T) {
	start := int64(1700000000)
	end := start + 3600
	target := fmt.Sprintf("/metrics/api/v1/query_range?query=up&start=%d&end=%d&step=300", start, end)

	rec := get(t, newTestMux(t, healthySnapshot(t)), target)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)

	data := decodeQueryData(t, env)
	assert.Equal(t, "matrix", data.ResultType)
	require.Len(t, data.Result, 1)

	row := data.Result[0]
	assert.Equal(t, "up", row.Metric["__name__"])
	require.Len(t, row.Values, 13, "(3600/300)+1 buckets, inclusive ends")

	for i, pair := range row.Values {
		require.Len(t, pair, 2)
		ts := pair[0].(float64)
		assert.Equal(t, float64(start)+float64(i)*300, ts)
		assert.GreaterOrEqual(t, ts, float64(start))
		assert.LessOrEqual(t, ts, float64(end))
		assert.Equal(t, "1", pair[1], "every bucket repeats the snapshot value")
	}
}

func TestQueryRangeHandler_AcceptsRFC3339AndDurationStep(t *testing.T) {
	target := "/metrics/api/v1/query_range?query=up" +
		"&start=" + url.QueryEscape("2025-06-01T00:00:00Z") +
		"&end=" + url.QueryEscape("2025-06-01T01:00:00Z") +
		"&step=5m"

	rec := get(t, newTestMux(t, healthySnapshot(t)), target)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeQueryData(t, decodeEnvelope(t, rec))
	require.Len(t, data.Result, 1)
	assert.Len(t, data.Result[0].Values, 13)
}

func TestQueryRangeHandler_UnknownMetric(t *testing.T) {
	target := "/metrics/api/v1/query_range?query=no_such_metric&start=1700000000&end=1700003600&step=300"
	rec := get(t, newTestMux(t, healthySnapshot(t)), target)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "success", env.Status)

	data := decodeQueryData(t, env)
	assert.Equal(t, "matrix", data.ResultType)
	assert.Empty(t, data.Result)
}

func TestQueryRangeHandler_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"zero step", "/metrics/api/v1/query_range?query=up&start=1700000000&end=1700003600&step=0"},
		{"negative step", "/metrics/api/v1/query_range?query=up&start=1700000000&end=1700003600&step=-60"},
		{"end before start", "/metrics/api/v1/query_range?query=up&start=1700003600&end=1700000000&step=300"},
		{"missing step", "/metrics/api/v1/query_range?query=up&start=1700000000&end=1700003600"},
		{"missing start", "/metrics/api/v1/query_range?query=up&end=1700003600&step=300"},
		{"unparseable start", "/metrics/api/v1/query_range?query=up&start=yesterday&end=1700003600&step=300"},
		{"malformed query", "/metrics/api/v1/query_range?query=1%2B&start=1700000000&end=1700003600&step=300"},
		{"sample count over ceiling", "/metrics/api/v1/query_range?query=up&start=1700000000&end=1703600000&step=1"},
	}

	mux := newTestMux(t, healthySnapshot(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, mux, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			env := decodeEnvelope(t, rec)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, "bad_data", env.ErrorType)
		})
	}
}

func TestLabelsHandler(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/api/v1/labels")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)

	var labels []string
	require.NoError(t, json.Unmarshal(env.Data, &labels))
	assert.Equal(t, []string{"__name__", "environment"}, labels)
}

func TestLabelValuesHandler(t *testing.T) {
	mux := newTestMux(t, healthySnapshot(t))

	t.Run("metric names", func(t *testing.T) {
		rec := get(t, mux, "/metrics/api/v1/label/__name__/values")
		require.Equal(t, http.StatusOK, rec.Code)

		var names []string
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &names))
		assert.Contains(t, names, "up")
		assert.Contains(t, names, "newsletter_subscribers_total")
		assert.Len(t, names, 6)
	})

	t.Run("environment", func(t *testing.T) {
		rec := get(t, mux, "/metrics/api/v1/label/environment/values")
		require.Equal(t, http.StatusOK, rec.Code)

		var values []string
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &values))
		assert.Equal(t, []string{"local"}, values)
	})

	t.Run("unknown label", func(t *testing.T) {
		rec := get(t, mux, "/metrics/api/v1/label/job/values")
		require.Equal(t, http.StatusOK, rec.Code)

		var values []string
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &values))
		assert.Empty(t, values)
	})
}

func TestBuildInfoHandler(t *testing.T) {
	rec := get(t, newTestMux(t, healthySnapshot(t)), "/metrics/api/v1/status/buildinfo")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)

	var info BuildInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
}

// Every representation of the same snapshot must agree numerically.
func TestCrossFormatNumericEquality(t *testing.T) {
	snap := healthySnapshot(t)
	mux := newTestMux(t, snap)

	total, ok := snap.Lookup(metrics.MetricSubscribersTotal)
	require.True(t, ok)

	// Text exposition.
	text := get(t, mux, "/metrics")
	assert.Contains(t, text.Body.String(),
		fmt.Sprintf(`newsletter_subscribers_total{environment="local"} %s`, metrics.FormatValue(total.Value)))

	// Full JSON view.
	var view metrics.SnapshotView
	require.NoError(t, json.Unmarshal(get(t, mux, "/metrics/json").Body.Bytes(), &view))
	require.NotNil(t, view.Subscribers)
	assert.Equal(t, total.Value, view.Subscribers.Total)

	// Query API.
	rec := get(t, mux, "/metrics/api/v1/query?query=newsletter_subscribers_total")
	data := decodeQueryData(t, decodeEnvelope(t, rec))
	require.Len(t, data.Result, 1)
	assert.Equal(t, metrics.FormatValue(total.Value), data.Result[0].Value[1])

	// database_status agrees between the database view and the query API.
	var dbView metrics.DatabaseSnapshotView
	require.NoError(t, json.Unmarshal(get(t, mux, "/metrics/database").Body.Bytes(), &dbView))

	rec = get(t, mux, "/metrics/api/v1/query?query=database_status")
	data = decodeQueryData(t, decodeEnvelope(t, rec))
	require.Len(t, data.Result, 1)
	assert.Equal(t, metrics.FormatValue(dbView.Database.Status), data.Result[0].Value[1])
}
