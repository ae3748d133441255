// Package selection ties the catalog, the filter engine and the selection
// store together. Every operation reads the stored state, applies its change
// and writes the whole state back.
package selection

import (
	"context"
	"fmt"

	"github.com/verte-zerg/wsec/internal/analysis"
	"github.com/verte-zerg/wsec/internal/catalog"
	"github.com/verte-zerg/wsec/internal/model"
	"github.com/verte-zerg/wsec/internal/query"
	"github.com/verte-zerg/wsec/internal/solver"
	"github.com/verte-zerg/wsec/internal/store"
)

// View is the selection as shown to the user.
type View struct {
	// Rows are sorted by weight.
	Rows    []catalog.Record
	Filters map[string]string
	Loads   map[string]float64
}

// AnalysisView is a View with the stress results of a sub-slice.
type AnalysisView struct {
	Results []analysis.Result
	// Positions holds the display position in the selection of each result.
	Positions []int
	Filters map[string]string
	Loads   map[string]float64
	Fy      float64
}

// Service runs the selection commands.
type Service struct {
	Catalog *catalog.Catalog
	Repo    store.Repository
	// Notify receives non-fatal notices. May be nil.
	Notify query.NoticeFunc
}

// All resets the state and filters the full catalog.
func (s *Service) All(ctx context.Context, filters map[string]string) (View, error) {
	if err := s.Repo.Reset(ctx); err != nil {
		return View{}, fmt.Errorf("failed to reset selection: %w", err)
	}
	rows, err := query.ApplyAllFilters(s.Catalog, s.Catalog.AllIndexes(), filters, s.Notify)
	if err != nil {
		return View{}, err
	}
	sel := model.EmptySelection()
	sel.Indexes = rows
	sel.Filters = model.MergeFilters(nil, filters)
	if err := s.Repo.Save(ctx, sel); err != nil {
		return View{}, fmt.Errorf("failed to save selection: %w", err)
	}
	return s.view(sel)
}

// Filter narrows the stored selection further.
func (s *Service) Filter(ctx context.Context, filters map[string]string) (View, error) {
	sel, err := s.Repo.Load(ctx)
	if err != nil {
		return View{}, err
	}
	if err := s.checkIndexes(sel.Indexes); err != nil {
		return View{}, err
	}
	rows, err := query.ApplyAllFilters(s.Catalog, sel.Indexes, filters, s.Notify)
	if err != nil {
		return View{}, err
	}
	sel.Indexes = rows
	sel.Filters = model.MergeFilters(sel.Filters, filters)
	if err := s.Repo.Save(ctx, sel); err != nil {
		return View{}, fmt.Errorf("failed to save selection: %w", err)
	}
	return s.view(sel)
}

// Apply merges loads into the stored load case. The solver is not run.
func (s *Service) Apply(ctx context.Context, loads map[string]float64) (View, error) {
	if err := model.ValidateLoads(loads); err != nil {
		return View{}, err
	}
	sel, err := s.Repo.Load(ctx)
	if err != nil {
		return View{}, err
	}
	sel.Loads = model.MergeLoads(sel.Loads, loads)
	if err := s.Repo.Save(ctx, sel); err != nil {
		return View{}, fmt.Errorf("failed to save selection: %w", err)
	}
	return s.view(sel)
}

// Status returns the stored selection.
func (s *Service) Status(ctx context.Context) (View, error) {
	sel, err := s.Repo.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return s.view(sel)
}

// Reset clears the stored selection.
func (s *Service) Reset(ctx context.Context) error {
	return s.Repo.Reset(ctx)
}

// Analyze solves the rows picked by slice from the displayed selection under
// the stored loads.
func (s *Service) Analyze(ctx context.Context, slice query.Slice, fy float64, sv solver.Solver) (AnalysisView, error) {
	sel, err := s.Repo.Load(ctx)
	if err != nil {
		return AnalysisView{}, err
	}
	v, err := s.view(sel)
	if err != nil {
		return AnalysisView{}, err
	}
	positions, err := slice.Positions(len(v.Rows))
	if err != nil {
		return AnalysisView{}, err
	}
	rows := make([]catalog.Record, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, v.Rows[p])
	}
	results, err := analysis.ComputeStresses(ctx, rows, fy, sel.Loads, sv)
	if err != nil {
		return AnalysisView{}, err
	}
	return AnalysisView{
		Results:   results,
		Positions: positions,
		Filters:   sel.Filters,
		Loads:     sel.Loads,
		Fy:        fy,
	}, nil
}

func (s *Service) view(sel model.Selection) (View, error) {
	rows, err := s.Catalog.Records(sel.Indexes)
	if err != nil {
		return View{}, fmt.Errorf("stored selection does not match the catalog: %w", err)
	}
	return View{
		Rows:    catalog.SortByWeight(rows),
		Filters: sel.Filters,
		Loads:   sel.Loads,
	}, nil
}

func (s *Service) checkIndexes(indexes []int) error {
	n := s.Catalog.Len()
	for _, idx := range indexes {
		if idx < 0 || idx >= n {
			return fmt.Errorf("stored selection does not match the catalog: row %d of %d; run 'wsec all' to start over", idx, n)
		}
	}
	return nil
}
