package model

import (
	"errors"
	"testing"
)

func TestMergeLoadsKeepsUnspecified(t *testing.T) {
	prev := map[string]float64{LoadN: 100, LoadMx: 5e6}
	next := map[string]float64{LoadMx: 7e6, LoadT: 1e5}

	got := MergeLoads(prev, next)
	if len(got) != 3 {
		t.Fatalf("expected 3 loads, got %v", got)
	}
	if got[LoadN] != 100 || got[LoadMx] != 7e6 || got[LoadT] != 1e5 {
		t.Fatalf("unexpected merge result: %v", got)
	}
	if prev[LoadMx] != 5e6 {
		t.Fatalf("merge must not mutate previous loads")
	}
}

func TestMergeFiltersOverwritesSameField(t *testing.T) {
	got := MergeFilters(map[string]string{"d": "<=300", "Ix": ">1e8"}, map[string]string{"d": ">=200"})
	if got["d"] != ">=200" || got["Ix"] != ">1e8" {
		t.Fatalf("unexpected merge result: %v", got)
	}
}

func TestValidateLoadsRejectsUnknown(t *testing.T) {
	if err := ValidateLoads(map[string]float64{LoadVy: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateLoads(map[string]float64{"Mz": 1})
	var unknown *UnknownLoadError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownLoadError, got %v", err)
	}
	if unknown.Name != "Mz" {
		t.Fatalf("unexpected name: %q", unknown.Name)
	}
}

func TestCloneIsDeep(t *testing.T) {
	sel := Selection{
		Indexes: []int{1, 2},
		Filters: map[string]string{"d": "<300"},
		Loads:   map[string]float64{LoadN: 1},
	}
	cp := sel.Clone()
	cp.Indexes[0] = 9
	cp.Filters["d"] = ">1"
	cp.Loads[LoadN] = 2
	if sel.Indexes[0] != 1 || sel.Filters["d"] != "<300" || sel.Loads[LoadN] != 1 {
		t.Fatalf("clone shares state with original: %+v", sel)
	}
}

func TestFormatLoadsComponentOrder(t *testing.T) {
	got := FormatLoads(map[string]float64{LoadT: 3, LoadN: 1, LoadMy: 2})
	if got != "{N: 1, My: 2, T: 3}" {
		t.Fatalf("unexpected format: %q", got)
	}
	if FormatFilters(nil) != "{}" {
		t.Fatalf("expected empty braces for no filters")
	}
}
