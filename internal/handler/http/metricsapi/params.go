package metricsapi

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// parseTime parses a Prometheus API timestamp parameter: unix seconds with
// optional fractional part, or an RFC 3339 string.
func parseTime(s string) (time.Time, error) {
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(sec) || math.IsInf(sec, 0) {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
		return time.UnixMilli(int64(sec * 1000)).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}

// parseStep parses a step parameter: a float number of seconds or a duration
// string such as "5m".
func parseStep(s string) (time.Duration, error) {
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(sec) || math.IsInf(sec, 0) {
			return 0, fmt.Errorf("invalid step %q", s)
		}
		return time.Duration(sec * float64(time.Second)), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return 0, fmt.Errorf("cannot parse %q as a duration", s)
}
