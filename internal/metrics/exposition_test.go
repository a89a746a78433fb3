package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	labels := map[string]string{"environment": "local"}
	snap, err := NewSnapshot(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), []Metric{
		{Name: MetricUp, Kind: KindGauge, Help: helpUp, Value: 1, Labels: labels},
		{Name: MetricDatabaseStatus, Kind: KindGauge, Help: helpDatabaseStatus, Value: 1, Labels: labels},
		{Name: MetricSubscribersTotal, Kind: KindGauge, Help: helpSubscribersTotal, Value: 7, Labels: labels},
		{Name: MetricSubscribersActive, Kind: KindGauge, Help: helpSubscribersActive, Value: 5, Labels: labels},
		{Name: MetricSubscriptions24h, Kind: KindGauge, Help: helpSubscriptions24h, Value: 2, Labels: labels},
		{Name: MetricUnsubscribes24h, Kind: KindGauge, Help: helpUnsubscribes24h, Value: 1, Labels: labels},
	})
	require.NoError(t, err)
	return snap
}

func degradedSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	labels := map[string]string{"environment": "local"}
	snap, err := NewSnapshot(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), []Metric{
		{Name: MetricUp, Kind: KindGauge, Help: helpUp, Value: 1, Labels: labels},
		{Name: MetricDatabaseStatus, Kind: KindGauge, Help: helpDatabaseStatus, Value: 0, Labels: labels},
	})
	require.NoError(t, err)
	return snap
}

func TestWriteText(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteText(&b, fullSnapshot(t)))
	out := b.String()

	assert.Contains(t, out, "# HELP up "+helpUp+"\n")
	assert.Contains(t, out, "# TYPE up gauge\n")
	assert.Contains(t, out, `up{environment="local"} 1`+"\n")
	assert.Contains(t, out, `newsletter_subscribers_total{environment="local"} 7`+"\n")
	assert.Contains(t, out, `newsletter_subscribers_active{environment="local"} 5`+"\n")

	// One HELP/TYPE/sample triple per metric.
	assert.Equal(t, 6, strings.Count(out, "# HELP "))
	assert.Equal(t, 6, strings.Count(out, "# TYPE "))
	assert.Equal(t, 18, strings.Count(out, "\n"))
}

func TestWriteText_DegradedOmitsCounts(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteText(&b, degradedSnapshot(t)))
	out := b.String()

	assert.Contains(t, out, `database_status{environment="local"} 0`+"\n")
	assert.NotContains(t, out, MetricSubscribersTotal)
}

func TestWriteText_LabelOrderingAndEscaping(t *testing.T) {
	snap, err := NewSnapshot(time.Now(), []Metric{
		{Name: "demo", Kind: KindGauge, Help: "Demo.", Value: 1, Labels: map[string]string{
			"zone":        "b",
			"environment": `we"ird` + "\n",
		}},
	})
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, WriteText(&b, snap))

	assert.Contains(t, b.String(), `demo{environment="we\"ird\n",zone="b"} 1`)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{2.5, "2.5"},
		{-3, "-3"},
		{math.Inf(1), "+Inf"},
		{math.Inf(-1), "-Inf"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestToView(t *testing.T) {
	view := ToView(fullSnapshot(t))

	f := func(v float64) *float64 { return &v }
	want := SnapshotView{
		Environment:       "local",
		Timestamp:         "2025-06-01T12:00:00Z",
		Database:          DatabaseView{Status: 1},
		Subscribers:       &SubscribersView{Total: 7, Active: 5, New24h: 2, Unsubscribed24h: 1},
		Up:                1,
		DatabaseStatus:    1,
		SubscribersTotal:  f(7),
		SubscribersActive: f(5),
		Subscriptions24h:  f(2),
		Unsubscribes24h:   f(1),
	}

	if diff := cmp.Diff(want, view); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestToView_Degraded(t *testing.T) {
	view := ToView(degradedSnapshot(t))

	assert.Equal(t, 0.0, view.Database.Status)
	assert.Equal(t, 1.0, view.Up)
	assert.Nil(t, view.Subscribers, "degraded snapshots omit the subscribers domain")
	assert.Nil(t, view.SubscribersTotal)
}

func TestToDatabaseView(t *testing.T) {
	view := ToDatabaseView(fullSnapshot(t))
	assert.Equal(t, "local", view.Environment)
	assert.Equal(t, "2025-06-01T12:00:00Z", view.Timestamp)
	assert.Equal(t, 1.0, view.Database.Status)
}

// The text exposition and the JSON views are drawn from the same snapshot,
// so a value read from one format must equal the same value in any other.
func TestFormatsAgreeNumerically(t *testing.T) {
	snap := fullSnapshot(t)

	total, ok := snap.Lookup(MetricSubscribersTotal)
	require.True(t, ok)

	var b strings.Builder
	require.NoError(t, WriteText(&b, snap))
	assert.Contains(t, b.String(),
		MetricSubscribersTotal+`{environment="local"} `+FormatValue(total.Value))

	view := ToView(snap)
	require.NotNil(t, view.Subscribers)
	assert.Equal(t, total.Value, view.Subscribers.Total)
	require.NotNil(t, view.SubscribersTotal)
	assert.Equal(t, total.Value, *view.SubscribersTotal)
}
