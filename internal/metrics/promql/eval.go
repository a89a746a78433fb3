package promql

import (
	"newsletter-api/internal/metrics"
)

// Sample is one evaluated series value. Labels include __name__ for bare
// metric references and are empty for computed scalars.
type Sample struct {
	Labels map[string]string
	Value  float64
}

// Result is an evaluated instant vector: zero samples when a referenced
// metric is absent from the snapshot, one sample otherwise.
type Result struct {
	Samples []Sample
}

// Empty reports whether the evaluation produced no samples.
func (r Result) Empty() bool { return len(r.Samples) == 0 }

// Eval evaluates the expression against the snapshot.
//
// A bare metric reference yields a sample carrying __name__ plus the metric's
// snapshot labels. Any arithmetic, including arithmetic over metrics, yields
// a single unlabeled scalar sample. Referencing a metric that is not in the
// snapshot is not an error: the result is an empty vector, matching
// Prometheus semantics for unknown series. Division follows IEEE 754, so a
// zero divisor produces Inf or NaN rather than an error.
func Eval(expr Expr, snap *metrics.Snapshot) Result {
	switch e := expr.(type) {
	case *NumberLit:
		return Result{Samples: []Sample{{Value: e.Value}}}
	case *MetricRef:
		m, ok := snap.Lookup(e.Name)
		if !ok {
			return Result{}
		}
		labels := map[string]string{"__name__": m.Name}
		for k, v := range m.Labels {
			labels[k] = v
		}
		return Result{Samples: []Sample{{Labels: labels, Value: m.Value}}}
	case *BinaryExpr:
		v, ok := evalScalar(e, snap)
		if !ok {
			return Result{}
		}
		return Result{Samples: []Sample{{Value: v}}}
	default:
		return Result{}
	}
}

// evalScalar reduces an expression tree to a single value, left to right.
// It reports false when any referenced metric is absent, which collapses the
// whole expression to an empty result.
func evalScalar(expr Expr, snap *metrics.Snapshot) (float64, bool) {
	switch e := expr.(type) {
	case *NumberLit:
		return e.Value, true
	case *MetricRef:
		m, ok := snap.Lookup(e.Name)
		if !ok {
			return 0, false
		}
		return m.Value, true
	case *BinaryExpr:
		lhs, ok := evalScalar(e.LHS, snap)
		if !ok {
			return 0, false
		}
		rhs, ok := evalScalar(e.RHS, snap)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case OpAdd:
			return lhs + rhs, true
		case OpSub:
			return lhs - rhs, true
		case OpMul:
			return lhs * rhs, true
		case OpDiv:
			return lhs / rhs, true
		}
	}
	return 0, false
}
