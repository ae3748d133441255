// Package model defines shared data structures.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Load component names, in display order.
const (
	LoadN  = "N"
	LoadMx = "Mx"
	LoadMy = "My"
	LoadVx = "Vx"
	LoadVy = "Vy"
	LoadT  = "T"
)

// LoadComponents lists every accepted load component.
var LoadComponents = []string{LoadN, LoadMx, LoadMy, LoadVx, LoadVy, LoadT}

// Selection is the state carried between invocations.
type Selection struct {
	Indexes []int              `json:"indexes"`
	Filters map[string]string  `json:"filters"`
	Loads   map[string]float64 `json:"loads"`
}

// EmptySelection returns the state written by a reset.
func EmptySelection() Selection {
	return Selection{
		Indexes: []int{},
		Filters: map[string]string{},
		Loads:   map[string]float64{},
	}
}

// Normalize replaces nil members with empty ones.
func (s Selection) Normalize() Selection {
	if s.Indexes == nil {
		s.Indexes = []int{}
	}
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if s.Loads == nil {
		s.Loads = map[string]float64{}
	}
	return s
}

// Clone returns a deep copy so callers can mutate freely.
func (s Selection) Clone() Selection {
	out := EmptySelection()
	out.Indexes = append(out.Indexes, s.Indexes...)
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	for k, v := range s.Loads {
		out.Loads[k] = v
	}
	return out
}

// UnknownLoadError reports a load component outside LoadComponents.
type UnknownLoadError struct {
	Name string
}

func (e *UnknownLoadError) Error() string {
	return fmt.Sprintf("unknown load component %q (expected one of %s)", e.Name, strings.Join(LoadComponents, ", "))
}

// ValidateLoads checks that every key is a known load component.
func ValidateLoads(loads map[string]float64) error {
	keys := make([]string, 0, len(loads))
	for k := range loads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !isLoadComponent(k) {
			return &UnknownLoadError{Name: k}
		}
	}
	return nil
}

// MergeLoads overlays next on prev. Components missing from next keep their
// previous value.
func MergeLoads(prev, next map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(prev)+len(next))
	for k, v := range prev {
		out[k] = v
	}
	for k, v := range next {
		out[k] = v
	}
	return out
}

// MergeFilters overlays next on prev; a field filtered again keeps the latest
// expression.
func MergeFilters(prev, next map[string]string) map[string]string {
	out := make(map[string]string, len(prev)+len(next))
	for k, v := range prev {
		out[k] = v
	}
	for k, v := range next {
		out[k] = v
	}
	return out
}

// FormatFilters renders filters as "field expr" pairs in key order.
func FormatFilters(filters map[string]string) string {
	if len(filters) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, filters[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FormatLoads renders loads in component order.
func FormatLoads(loads map[string]float64) string {
	if len(loads) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(loads))
	for _, name := range LoadComponents {
		if v, ok := loads[name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %g", name, v))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func isLoadComponent(name string) bool {
	for _, c := range LoadComponents {
		if c == name {
			return true
		}
	}
	return false
}
