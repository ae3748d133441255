package selection

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/verte-zerg/wsec/internal/catalog"
	"github.com/verte-zerg/wsec/internal/model"
	"github.com/verte-zerg/wsec/internal/query"
	"github.com/verte-zerg/wsec/internal/solver"
	"github.com/verte-zerg/wsec/internal/store"
)

func scenarioCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.FromRows([][]string{
		{"Section", "W", "d", "bf", "tf", "tw", "kdes", "Ix", "Sy"},
		{"S0", "40", "300", "200", "12", "8", "25", "200", "300"},
		{"S1", "10", "310", "200", "12", "8", "25", "250", "250"},
		{"S2", "30", "320", "200", "12", "8", "25", "400", "600"},
		{"S3", "20", "330", "200", "12", "8", "25", "500", "700"},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	return cat
}

func newService(t *testing.T) (*Service, *[]string) {
	t.Helper()
	var notices []string
	return &Service{
		Catalog: scenarioCatalog(t),
		Repo:    store.NewMemory(),
		Notify:  func(msg string) { notices = append(notices, msg) },
	}, &notices
}

func names(rows []catalog.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestAllSortsByWeight(t *testing.T) {
	svc, _ := newService(t)
	v, err := svc.All(context.Background(), nil)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	want := []string{"S1", "S3", "S2", "S0"}
	if got := names(v.Rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	sel, err := svc.Repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(sel.Indexes, []int{0, 1, 2, 3}) {
		t.Fatalf("expected stored indexes in catalog order, got %v", sel.Indexes)
	}
}

func TestAllResetsPriorState(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, map[string]string{"Ix": ">=400"}); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if _, err := svc.Apply(ctx, map[string]float64{model.LoadN: 10}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	v, err := svc.All(ctx, map[string]string{"Sy": "<=300"})
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if got := names(v.Rows); !reflect.DeepEqual(got, []string{"S1", "S0"}) {
		t.Fatalf("unexpected rows %v", got)
	}
	if !reflect.DeepEqual(v.Filters, map[string]string{"Sy": "<=300"}) || len(v.Loads) != 0 {
		t.Fatalf("expected fresh filters and loads, got %v %v", v.Filters, v.Loads)
	}
}

func TestFilterNeedsState(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Filter(context.Background(), map[string]string{"Ix": ">1"})
	if !errors.Is(err, store.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestFilterOrderIndependent(t *testing.T) {
	ctx := context.Background()
	run := func(first, second map[string]string) View {
		svc, _ := newService(t)
		if _, err := svc.All(ctx, nil); err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if _, err := svc.Filter(ctx, first); err != nil {
			t.Fatalf("Filter failed: %v", err)
		}
		v, err := svc.Filter(ctx, second)
		if err != nil {
			t.Fatalf("Filter failed: %v", err)
		}
		return v
	}
	ix := map[string]string{"Ix": ">=250"}
	sy := map[string]string{"Sy": "<=600"}
	a := run(ix, sy)
	b := run(sy, ix)
	if !reflect.DeepEqual(names(a.Rows), names(b.Rows)) {
		t.Fatalf("expected same rows, got %v and %v", names(a.Rows), names(b.Rows))
	}
	if !reflect.DeepEqual(a.Filters, b.Filters) || len(a.Filters) != 2 {
		t.Fatalf("expected merged filters, got %v and %v", a.Filters, b.Filters)
	}
	if got := names(a.Rows); !reflect.DeepEqual(got, []string{"S1", "S2"}) {
		t.Fatalf("unexpected rows %v", got)
	}
}

func TestFilterOverwritesSameField(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, map[string]string{"Ix": ">=200"}); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	v, err := svc.Filter(ctx, map[string]string{"Ix": ">=400"})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if v.Filters["Ix"] != ">=400" {
		t.Fatalf("expected latest expression, got %q", v.Filters["Ix"])
	}
}

func TestEmptyResultIsNotice(t *testing.T) {
	svc, notices := newService(t)
	v, err := svc.All(context.Background(), map[string]string{"Ix": ">9000"})
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(v.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(v.Rows))
	}
	if len(*notices) != 1 || !strings.Contains((*notices)[0], "Ix: >9000") {
		t.Fatalf("expected one notice naming the filter, got %v", *notices)
	}
}

func TestFilterErrorKeepsState(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, map[string]string{"Ix": ">=400"}); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	_, err := svc.Filter(ctx, map[string]string{"Ix": "bad!!"})
	var inv *query.InvalidExpressionError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidExpressionError, got %v", err)
	}
	v, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(v.Rows) != 2 || len(v.Filters) != 1 {
		t.Fatalf("expected state unchanged, got %v %v", names(v.Rows), v.Filters)
	}
}

func TestApplyMergesLoads(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, nil); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if _, err := svc.Apply(ctx, map[string]float64{model.LoadN: 1, model.LoadMx: 2}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	v, err := svc.Apply(ctx, map[string]float64{model.LoadMx: 5, model.LoadT: 3})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := map[string]float64{model.LoadN: 1, model.LoadMx: 5, model.LoadT: 3}
	if !reflect.DeepEqual(v.Loads, want) {
		t.Fatalf("expected %v, got %v", want, v.Loads)
	}
	if len(v.Rows) != 4 {
		t.Fatalf("expected rows unchanged, got %d", len(v.Rows))
	}
}

func TestApplyRejectsUnknownLoad(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, nil); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	_, err := svc.Apply(ctx, map[string]float64{"Mz": 1})
	var lerr *model.UnknownLoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected UnknownLoadError, got %v", err)
	}
}

func TestResetThenStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, map[string]string{"Ix": ">=400"}); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	v, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(v.Rows) != 0 || len(v.Filters) != 0 || len(v.Loads) != 0 {
		t.Fatalf("expected empty view, got %+v", v)
	}
}

func TestAnalyzeSlicesDisplayedRows(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, nil); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if _, err := svc.Apply(ctx, map[string]float64{model.LoadMx: 1e7}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	slice, err := query.ParseSlice("0:4:2")
	if err != nil {
		t.Fatalf("ParseSlice failed: %v", err)
	}
	av, err := svc.Analyze(ctx, slice, 350, solver.CellSolver{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	var got []string
	for _, r := range av.Results {
		got = append(got, r.Record.Name)
		if r.MaxVonMises <= 0 || r.Loads[model.LoadMx] != 1e7 {
			t.Fatalf("unexpected result %+v", r)
		}
	}
	if !reflect.DeepEqual(got, []string{"S1", "S2"}) {
		t.Fatalf("expected S1 and S2, got %v", got)
	}
	if !reflect.DeepEqual(av.Positions, []int{0, 2}) {
		t.Fatalf("expected positions [0 2], got %v", av.Positions)
	}
	if av.Fy != 350 {
		t.Fatalf("expected fy 350, got %g", av.Fy)
	}
}

func TestAnalyzeSingleRowOutOfRange(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.All(ctx, nil); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	slice, err := query.ParseSlice("9")
	if err != nil {
		t.Fatalf("ParseSlice failed: %v", err)
	}
	if _, err := svc.Analyze(ctx, slice, 350, solver.CellSolver{}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestStaleIndexesRejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if err := svc.Repo.Save(ctx, model.Selection{Indexes: []int{0, 12}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := svc.Filter(ctx, map[string]string{"Ix": ">1"}); err == nil {
		t.Fatalf("expected error for stale indexes")
	}
	if _, err := svc.Status(ctx); err == nil {
		t.Fatalf("expected error for stale indexes")
	}
}
