package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/wsec/internal/model"
)

// ParseFilterArgs turns a stream of key/value arguments such as
// ["--d", "<=304", "--Ix", ">503"] into a field map. Leading dashes on keys
// are dropped; a later duplicate key wins.
func ParseFilterArgs(args []string) (map[string]string, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("filter %q is missing a value", args[len(args)-1])
	}
	filters := make(map[string]string, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key := strings.TrimLeft(args[i], "-")
		if key == "" {
			return nil, fmt.Errorf("empty filter name at argument %d", i+1)
		}
		if k, v, ok := strings.Cut(key, "="); ok {
			return nil, fmt.Errorf("filter %q must be written as --%s %s", args[i], k, v)
		}
		filters[key] = args[i+1]
	}
	return filters, nil
}

// Slice is a positional sub-range with Python slice semantics. Nil bounds
// take their defaults.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
	// Single selects just the row at Start.
	Single bool
}

// ParseSlice parses "start[:stop[:step]]". An empty string selects all rows.
func ParseSlice(s string) (Slice, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Slice{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Slice{}, fmt.Errorf("sub-slice must be in the form start[:stop[:step]], got %q", s)
	}
	bounds := make([]*int, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return Slice{}, fmt.Errorf("sub-slice must be in the form start[:stop[:step]], got %q", s)
		}
		bounds[i] = &v
	}
	out := Slice{Start: bounds[0], Stop: bounds[1], Step: bounds[2]}
	if len(parts) == 1 {
		out.Single = true
	}
	if out.Step != nil && *out.Step == 0 {
		return Slice{}, fmt.Errorf("sub-slice step cannot be zero")
	}
	return out, nil
}

// Positions resolves the slice over a sequence of length n.
func (s Slice) Positions(n int) ([]int, error) {
	if s.Single {
		i := *s.Start
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("row %d is outside the selection (%d rows)", *s.Start, n)
		}
		return []int{i}, nil
	}
	step := 1
	if s.Step != nil {
		step = *s.Step
	}
	var start, stop int
	if step > 0 {
		start = clampBound(s.Start, n, 0, 0, n)
		stop = clampBound(s.Stop, n, n, 0, n)
	} else {
		start = clampBound(s.Start, n, n-1, -1, n-1)
		stop = clampBound(s.Stop, n, -1, -1, n-1)
	}
	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out, nil
}

func clampBound(v *int, n, def, lo, hi int) int {
	if v == nil {
		return def
	}
	i := *v
	if i < 0 {
		i += n
	}
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// ParseLoadArgs parses pairs such as ["--mx", "3e8", "N", "1e5"] into load
// components. Names are matched without regard to case.
func ParseLoadArgs(args []string) (map[string]float64, error) {
	pairs, err := ParseFilterArgs(args)
	if err != nil {
		return nil, err
	}
	loads := make(map[string]float64, len(pairs))
	for key, raw := range pairs {
		name, ok := canonicalLoad(key)
		if !ok {
			return nil, &model.UnknownLoadError{Name: key}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("load %s: invalid number %q", name, raw)
		}
		loads[name] = v
	}
	return loads, nil
}

func canonicalLoad(name string) (string, bool) {
	for _, c := range model.LoadComponents {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
