// Package query narrows catalog row sets with comparison expressions.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparison operators.
const (
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpApprox       = "@"
	// OpNone is returned when an expression has no operator; it filters as OpEqual.
	OpNone = ""
)

const (
	operatorChars = "<>=!@"
	numberSymbols = ".-eE"
)

// InvalidExpressionError reports a character outside the expression alphabet.
type InvalidExpressionError struct {
	Expr string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid comparison value %q: expected an operator (<, <=, >, >=, ==, !=, @) followed by a number without spaces", e.Expr)
}

// NumberError reports a numeric part that does not convert to a float.
type NumberError struct {
	Expr string
	Err  error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("invalid number in comparison value %q: %v", e.Expr, e.Err)
}

func (e *NumberError) Unwrap() error {
	return e.Err
}

// ParseComparison splits expr into its operator and numeric value. Operator
// and number characters are collected in the order they appear; the operator
// is empty when expr holds only a number.
func ParseComparison(expr string) (string, float64, error) {
	var op, num strings.Builder
	for _, ch := range expr {
		switch {
		case strings.ContainsRune(operatorChars, ch):
			op.WriteRune(ch)
		case ch >= '0' && ch <= '9', strings.ContainsRune(numberSymbols, ch):
			num.WriteRune(ch)
		default:
			return "", 0, &InvalidExpressionError{Expr: expr}
		}
	}
	value, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return "", 0, &NumberError{Expr: expr, Err: err}
	}
	return op.String(), value, nil
}

// FormatComparison is the inverse of ParseComparison.
func FormatComparison(op string, value float64) string {
	return op + strconv.FormatFloat(value, 'g', -1, 64)
}
