// Package vars implements the Interpreter's typed variable cells and the
// scoped containers (global, root-script, local) that hold them.
package vars

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the tag of a Cell's tagged union.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Cell is a typed scalar variable cell: a string, an int64, or a float64.
// Integer cells auto-promote to float when a float operand arrives, per
// spec §3.
type Cell struct {
	kind Kind
	str  string
	i    int64
	f    float64
}

// String classifies and wraps s, matching the spec's "set-from-string
// auto-classify integer vs. float vs. string".
func String(s string) Cell {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Cell{kind: KindInt, i: n}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Cell{kind: KindFloat, f: f}
	}
	return Cell{kind: KindString, str: s}
}

// Int wraps an int64 as an integer cell.
func Int(n int64) Cell { return Cell{kind: KindInt, i: n} }

// Float wraps a float64 as a float cell.
func Float(f float64) Cell { return Cell{kind: KindFloat, f: f} }

// Kind reports the cell's current tag.
func (c Cell) Kind() Kind { return c.kind }

// IsNumeric reports whether the cell holds an int or a float.
func (c Cell) IsNumeric() bool { return c.kind == KindInt || c.kind == KindFloat }

// Float64 returns the cell's numeric value, converting an int cell.
// A string cell returns 0.
func (c Cell) Float64() float64 {
	switch c.kind {
	case KindInt:
		return float64(c.i)
	case KindFloat:
		return c.f
	default:
		return 0
	}
}

// Int64 returns the cell's integer value, truncating a float cell.
// A string cell returns 0.
func (c Cell) Int64() int64 {
	switch c.kind {
	case KindInt:
		return c.i
	case KindFloat:
		return int64(c.f)
	default:
		return 0
	}
}

// String renders the cell to its canonical, locale-independent string form.
// A finite float always renders with a decimal point ("1.0", not "1"), so
// a float cell never reads back as an integer.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(c.f, 'f', -1, 64)
		if !strings.Contains(s, ".") && !math.IsInf(c.f, 0) && !math.IsNaN(c.f) {
			s += ".0"
		}
		return s
	default:
		return c.str
	}
}

// arithError is returned by Cell arithmetic for type mismatches and
// divide-by-zero, both RuntimeError-class failures per spec §7.
type arithError struct {
	op  string
	msg string
}

func (e *arithError) Error() string { return fmt.Sprintf("#%s: %s", e.op, e.msg) }

func newArithError(op, msg string) error { return &arithError{op: op, msg: msg} }

// promote returns the numeric kind two operands should be combined under:
// float if either is a float, int if both are int.
func promote(a, b Cell) Kind {
	if a.kind == KindFloat || b.kind == KindFloat {
		return KindFloat
	}
	return KindInt
}

func numeric(op string, c Cell) (Cell, error) {
	if !c.IsNumeric() {
		return Cell{}, newArithError(op, "operand is not numeric")
	}
	return c, nil
}

// Add implements "+": string concatenation if the receiver is a string,
// otherwise numeric addition (promoting to float as needed). Per spec §3,
// "+" is the only operator allowed on strings.
func (c Cell) Add(operand Cell) (Cell, error) {
	if c.kind == KindString {
		return Cell{kind: KindString, str: c.str + operand.String()}, nil
	}
	if operand.kind == KindString {
		return Cell{}, newArithError("add", "cannot add a string to a number")
	}
	if promote(c, operand) == KindFloat {
		return Float(c.Float64() + operand.Float64()), nil
	}
	return Int(c.Int64() + operand.Int64()), nil
}

func (c Cell) binaryNumeric(op string, operand Cell, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) (Cell, error) {
	if _, err := numeric(op, c); err != nil {
		return Cell{}, err
	}
	if _, err := numeric(op, operand); err != nil {
		return Cell{}, err
	}
	if promote(c, operand) == KindFloat {
		return Float(floatOp(c.Float64(), operand.Float64())), nil
	}
	return Int(intOp(c.Int64(), operand.Int64())), nil
}

// Sub implements "-".
func (c Cell) Sub(operand Cell) (Cell, error) {
	return c.binaryNumeric("sub", operand,
		func(a, b int64) int64 { return a - b },
		func(a, b float64) float64 { return a - b })
}

// Mul implements "*".
func (c Cell) Mul(operand Cell) (Cell, error) {
	return c.binaryNumeric("mul", operand,
		func(a, b int64) int64 { return a * b },
		func(a, b float64) float64 { return a * b })
}

// Div implements "/"; dividing by zero is a recoverable RuntimeError, not a
// panic, per spec §3.
func (c Cell) Div(operand Cell) (Cell, error) {
	if _, err := numeric("div", c); err != nil {
		return Cell{}, err
	}
	if _, err := numeric("div", operand); err != nil {
		return Cell{}, err
	}
	if operand.Float64() == 0 {
		return Cell{}, newArithError("div", "division by zero")
	}
	if promote(c, operand) == KindFloat {
		return Float(c.Float64() / operand.Float64()), nil
	}
	return Int(c.Int64() / operand.Int64()), nil
}

// Min returns the smaller of c and operand.
func (c Cell) Min(operand Cell) (Cell, error) {
	return c.binaryNumeric("min", operand,
		func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		},
		math.Min)
}

// Max returns the larger of c and operand.
func (c Cell) Max(operand Cell) (Cell, error) {
	return c.binaryNumeric("max", operand,
		func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		},
		math.Max)
}

// Clamp restricts c to the closed range [lo, hi].
func (c Cell) Clamp(lo, hi Cell) (Cell, error) {
	clamped, err := c.Max(lo)
	if err != nil {
		return Cell{}, err
	}
	return clamped.Min(hi)
}

// Sqrt computes the square root, always yielding a float cell per spec §3's
// "float<->int transitions defined".
func (c Cell) Sqrt() (Cell, error) {
	if _, err := numeric("sqrt", c); err != nil {
		return Cell{}, err
	}
	v := c.Float64()
	if v < 0 {
		return Cell{}, newArithError("sqrt", "cannot take the square root of a negative number")
	}
	return Float(math.Sqrt(v)), nil
}

// Abs computes the absolute value, preserving the cell's kind.
func (c Cell) Abs() (Cell, error) {
	if _, err := numeric("abs", c); err != nil {
		return Cell{}, err
	}
	if c.kind == KindInt {
		n := c.i
		if n < 0 {
			n = -n
		}
		return Int(n), nil
	}
	return Float(math.Abs(c.f)), nil
}

// Floor rounds toward negative infinity, producing an int cell.
func (c Cell) Floor() (Cell, error) {
	if _, err := numeric("floor", c); err != nil {
		return Cell{}, err
	}
	return Int(int64(math.Floor(c.Float64()))), nil
}

// Ceil rounds toward positive infinity, producing an int cell.
func (c Cell) Ceil() (Cell, error) {
	if _, err := numeric("ceil", c); err != nil {
		return Cell{}, err
	}
	return Int(int64(math.Ceil(c.Float64()))), nil
}

// Round rounds to the nearest integer (half away from zero), producing an
// int cell.
func (c Cell) Round() (Cell, error) {
	if _, err := numeric("round", c); err != nil {
		return Cell{}, err
	}
	return Int(int64(math.Round(c.Float64()))), nil
}

// Truthy reports whether the cell counts as "true" for condition evaluation
// purposes (spec §4.4.3): non-empty and not one of null/0/false.
func (c Cell) Truthy() bool {
	s := strings.TrimSpace(c.String())
	switch s {
	case "", "null", "0", "false":
		return false
	default:
		return true
	}
}
