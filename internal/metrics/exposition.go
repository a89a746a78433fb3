package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TextContentType is the content type of the plain exposition format.
const TextContentType = "text/plain; version=0.0.4; charset=utf-8"

// WriteText renders the snapshot in the Prometheus text exposition format:
// a # HELP and # TYPE comment pair followed by one sample line per metric.
func WriteText(w io.Writer, s *Snapshot) error {
	for _, m := range s.Metrics() {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n", m.Name, m.Help); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "# TYPE %s %s\n", m.Name, m.Kind); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s %s\n", m.Name, formatLabels(m.Labels), FormatValue(m.Value)); err != nil {
			return err
		}
	}
	return nil
}

// FormatValue renders a sample value the way Prometheus does: shortest
// base-10 representation that round-trips, with Inf/NaN spelled out.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatLabels renders a label set as {k1="v1",k2="v2"} with keys sorted for
// deterministic output. An empty label set renders as nothing.
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeLabelValue(labels[k]))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

// escapeLabelValue escapes backslash, double quote and newline per the
// exposition format.
func escapeLabelValue(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(v)
}

// DatabaseView is the database domain of the JSON snapshot.
type DatabaseView struct {
	Status float64 `json:"status"`
}

// SubscribersView is the subscribers domain of the JSON snapshot. It is
// omitted entirely from degraded snapshots.
type SubscribersView struct {
	Total           float64 `json:"total"`
	Active          float64 `json:"active"`
	New24h          float64 `json:"new_24h"`
	Unsubscribed24h float64 `json:"unsubscribed_24h"`
}

// SnapshotView is the full JSON rendering of a snapshot. Besides the nested
// domain objects it repeats every metric under its full name at the root, for
// consumers that predate the nested layout.
type SnapshotView struct {
	Environment string           `json:"environment"`
	Timestamp   string           `json:"timestamp"`
	Database    DatabaseView     `json:"database"`
	Subscribers *SubscribersView `json:"subscribers,omitempty"`

	// Flat backward-compatible aliases.
	Up                float64  `json:"up"`
	DatabaseStatus    float64  `json:"database_status"`
	SubscribersTotal  *float64 `json:"newsletter_subscribers_total,omitempty"`
	SubscribersActive *float64 `json:"newsletter_subscribers_active,omitempty"`
	Subscriptions24h  *float64 `json:"newsletter_subscriptions_24h,omitempty"`
	Unsubscribes24h   *float64 `json:"newsletter_unsubscribes_24h,omitempty"`
}

// DatabaseSnapshotView is the JSON rendering served by /metrics/database.
type DatabaseSnapshotView struct {
	Environment string       `json:"environment"`
	Timestamp   string       `json:"timestamp"`
	Database    DatabaseView `json:"database"`
}

// ToView builds the full JSON view of the snapshot. All values come from the
// same snapshot that backs the text exposition, so the representations agree
// numerically.
func ToView(s *Snapshot) SnapshotView {
	view := SnapshotView{
		Environment: s.Environment(),
		Timestamp:   s.GeneratedAt().UTC().Format(time.RFC3339),
	}

	if up, ok := s.Lookup(MetricUp); ok {
		view.Up = up.Value
	}
	if db, ok := s.Lookup(MetricDatabaseStatus); ok {
		view.Database = DatabaseView{Status: db.Value}
		view.DatabaseStatus = db.Value
	}

	total, okTotal := s.Lookup(MetricSubscribersTotal)
	active, okActive := s.Lookup(MetricSubscribersActive)
	subs, okSubs := s.Lookup(MetricSubscriptions24h)
	unsubs, okUnsubs := s.Lookup(MetricUnsubscribes24h)
	if okTotal && okActive && okSubs && okUnsubs {
		view.Subscribers = &SubscribersView{
			Total:           total.Value,
			Active:          active.Value,
			New24h:          subs.Value,
			Unsubscribed24h: unsubs.Value,
		}
		view.SubscribersTotal = &total.Value
		view.SubscribersActive = &active.Value
		view.Subscriptions24h = &subs.Value
		view.Unsubscribes24h = &unsubs.Value
	}

	return view
}

// ToDatabaseView builds the database-only JSON view of the snapshot.
func ToDatabaseView(s *Snapshot) DatabaseSnapshotView {
	view := DatabaseSnapshotView{
		Environment: s.Environment(),
		Timestamp:   s.GeneratedAt().UTC().Format(time.RFC3339),
	}
	if db, ok := s.Lookup(MetricDatabaseStatus); ok {
		view.Database = DatabaseView{Status: db.Value}
	}
	return view
}
