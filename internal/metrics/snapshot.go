// Package metrics computes the operational metric set served by the metrics
// and query API. A Snapshot is built once per request from live subscriber
// store reads and then drives every representation of that request: text
// exposition, JSON views, and the query evaluator all read the same values.
package metrics

import (
	"fmt"
	"time"
)

// Kind distinguishes metric semantics in the exposition output.
type Kind string

const (
	KindGauge   Kind = "gauge"
	KindCounter Kind = "counter"
)

// Metric is a single named value with its labels at one point in time.
type Metric struct {
	Name   string
	Kind   Kind
	Help   string
	Value  float64
	Labels map[string]string
}

// Metric names served by this subsystem. Dashboards reference these
// identifiers directly, so they are stable.
const (
	MetricUp                = "up"
	MetricDatabaseStatus    = "database_status"
	MetricSubscribersTotal  = "newsletter_subscribers_total"
	MetricSubscribersActive = "newsletter_subscribers_active"
	MetricSubscriptions24h  = "newsletter_subscriptions_24h"
	MetricUnsubscribes24h   = "newsletter_unsubscribes_24h"
)

// Snapshot is an immutable, ordered set of metrics plus the instant they were
// generated. Metric names are unique within a snapshot. A snapshot serves
// exactly one request and is discarded afterwards.
type Snapshot struct {
	metrics     []Metric
	byName      map[string]int
	generatedAt time.Time
}

// NewSnapshot builds a snapshot from the given metrics, preserving order.
// It returns an error if two metrics share a name.
func NewSnapshot(generatedAt time.Time, ms []Metric) (*Snapshot, error) {
	byName := make(map[string]int, len(ms))
	for i, m := range ms {
		if _, dup := byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate metric name %q in snapshot", m.Name)
		}
		byName[m.Name] = i
	}
	return &Snapshot{
		metrics:     ms,
		byName:      byName,
		generatedAt: generatedAt,
	}, nil
}

// Metrics returns the metrics in snapshot order. Callers must not mutate the
// returned slice.
func (s *Snapshot) Metrics() []Metric {
	return s.metrics
}

// Lookup returns the metric with the given name, if present.
func (s *Snapshot) Lookup(name string) (Metric, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Metric{}, false
	}
	return s.metrics[i], true
}

// GeneratedAt returns the instant the snapshot was collected.
func (s *Snapshot) GeneratedAt() time.Time {
	return s.generatedAt
}

// Environment returns the environment label shared by the snapshot's metrics,
// or an empty string if none carry one.
func (s *Snapshot) Environment() string {
	for _, m := range s.metrics {
		if env, ok := m.Labels["environment"]; ok {
			return env
		}
	}
	return ""
}
