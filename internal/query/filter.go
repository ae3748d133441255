package query

import (
	"fmt"
	"sort"
)

// ApproxTolerance is the relative half-width of the @ band.
const ApproxTolerance = 0.10

// Table gives access to numeric fields by row index.
type Table interface {
	HasField(field string) bool
	Value(row int, field string) (float64, bool)
}

// NoticeFunc receives informational messages such as empty filter results.
type NoticeFunc func(msg string)

// UnsupportedOperatorError reports an operator string with no selection rule.
type UnsupportedOperatorError struct {
	Op   string
	Expr string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported comparison operator %q in %q", e.Op, e.Expr)
}

// UnknownFieldError reports a filter on a column the table does not have.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

type predicate func(value, target float64) bool

var predicates = map[string]predicate{
	OpLess:         func(v, t float64) bool { return v < t },
	OpLessEqual:    func(v, t float64) bool { return v <= t },
	OpGreater:      func(v, t float64) bool { return v > t },
	OpGreaterEqual: func(v, t float64) bool { return v >= t },
	OpEqual:        func(v, t float64) bool { return v == t },
	OpNone:         func(v, t float64) bool { return v == t },
	OpNotEqual:     func(v, t float64) bool { return v != t },
	OpApprox:       approxEqual,
}

// ApproxBand returns the closed interval matched by @target.
func ApproxBand(target float64) (lo, hi float64) {
	lo = target * (1 - ApproxTolerance)
	hi = target * (1 + ApproxTolerance)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

func approxEqual(v, target float64) bool {
	lo, hi := ApproxBand(target)
	return v >= lo && v <= hi
}

// ApplyFilter keeps the rows whose field satisfies expr, in input order.
// A filter that eliminates every remaining row is reported through notify
// and is not an error.
func ApplyFilter(table Table, rows []int, field, expr string, notify NoticeFunc) ([]int, error) {
	op, target, err := ParseComparison(expr)
	if err != nil {
		return nil, err
	}
	pred, ok := predicates[op]
	if !ok {
		return nil, &UnsupportedOperatorError{Op: op, Expr: expr}
	}
	if !table.HasField(field) {
		return nil, &UnknownFieldError{Field: field}
	}
	out := make([]int, 0, len(rows))
	for _, row := range rows {
		v, ok := table.Value(row, field)
		if !ok {
			return nil, fmt.Errorf("row %d has no value for %s", row, field)
		}
		if pred(v, target) {
			out = append(out, row)
		}
	}
	if len(out) == 0 && len(rows) > 0 && notify != nil {
		notify(fmt.Sprintf("No records match all of the parameters: {%s: %s}", field, expr))
	}
	return out, nil
}

// ApplyAllFilters intersects every filter over rows. Filters are independent
// predicates, so the result does not depend on their order.
func ApplyAllFilters(table Table, rows []int, filters map[string]string, notify NoticeFunc) ([]int, error) {
	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	current := append([]int{}, rows...)
	for _, field := range fields {
		next, err := ApplyFilter(table, current, field, filters[field], notify)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
