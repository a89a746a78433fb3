package promql

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMaxSamples caps the number of synthesized samples per range query,
// matching Prometheus's own query.max-samples default.
const DefaultMaxSamples = 11000

// Range is a validated time window for a range query.
type Range struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// Range validation errors. They map to bad_data in API responses.
var (
	ErrInvalidStep   = errors.New("step must be greater than zero")
	ErrInvalidWindow = errors.New("end timestamp must not be before start")
)

// Validate checks the range invariants and bounds the synthesized sample
// count. maxSamples <= 0 falls back to DefaultMaxSamples.
func (r Range) Validate(maxSamples int) error {
	if r.Step <= 0 {
		return ErrInvalidStep
	}
	if r.End.Before(r.Start) {
		return ErrInvalidWindow
	}
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	n := r.End.Sub(r.Start)/r.Step + 1
	if int64(n) > int64(maxSamples) {
		return fmt.Errorf("query would synthesize %d samples, exceeding the limit of %d", n, maxSamples)
	}
	return nil
}

// Point is one (timestamp, value) pair in a series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series is one row of a matrix result.
type Series struct {
	Labels map[string]string
	Points []Point
}

// Synthesize turns an instant result into a matrix over the range. No
// historical samples are retained for these metrics, so the current snapshot
// value is repeated for every bucket from start to end inclusive. An empty
// instant result yields an empty matrix, mirroring the instant-query
// behavior for unknown metrics.
//
// The range must have been validated first; Synthesize assumes step > 0 and
// end >= start.
func Synthesize(res Result, r Range) []Series {
	if res.Empty() {
		return []Series{}
	}

	n := int(r.End.Sub(r.Start)/r.Step) + 1
	series := make([]Series, 0, len(res.Samples))
	for _, sample := range res.Samples {
		points := make([]Point, 0, n)
		for t := r.Start; !t.After(r.End); t = t.Add(r.Step) {
			points = append(points, Point{Timestamp: t, Value: sample.Value})
		}
		series = append(series, Series{Labels: sample.Labels, Points: points})
	}
	return series
}
