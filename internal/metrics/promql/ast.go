// Package promql implements the scalar expression language accepted by the
// query API. The grammar is deliberately small: number literals, metric name
// references, and flat left-to-right +, -, *, / arithmetic. Label matchers,
// functions and aggregations are not supported.
package promql

import (
	"fmt"
	"strconv"
)

// Expr is a parsed expression node.
type Expr interface {
	// String renders the node back to expression syntax.
	String() string

	exprNode()
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// MetricRef references a metric in the snapshot by exact name.
type MetricRef struct {
	Name string
}

// BinaryExpr applies an arithmetic operator to two sub-expressions.
// Operators have equal precedence and associate to the left.
type BinaryExpr struct {
	Op  Op
	LHS Expr
	RHS Expr
}

// Op is an arithmetic operator.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

func (n *NumberLit) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (m *MetricRef) String() string { return m.Name }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %c %s)", b.LHS, b.Op, b.RHS)
}

func (*NumberLit) exprNode()  {}
func (*MetricRef) exprNode()  {}
func (*BinaryExpr) exprNode() {}
