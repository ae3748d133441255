// Package analysis runs the stress solver over catalog rows.
package analysis

import (
	"context"
	"fmt"

	"github.com/verte-zerg/wsec/internal/catalog"
	"github.com/verte-zerg/wsec/internal/model"
	"github.com/verte-zerg/wsec/internal/solver"
)

// DefaultFy is the yield strength in MPa used when none is given.
const DefaultFy = 350.0

// Result is one analysed section.
type Result struct {
	Record      catalog.Record
	Fy          float64
	Loads       map[string]float64
	MaxVonMises float64
	DCR         float64
}

// Geometry extracts the solver geometry from a catalog record. The fillet
// radius is kdes less the flange thickness.
func Geometry(rec catalog.Record) (solver.Geometry, error) {
	fields := []string{
		catalog.ColumnDepth,
		catalog.ColumnFlangeWidth,
		catalog.ColumnFlangeThk,
		catalog.ColumnWebThk,
		catalog.ColumnKDes,
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, ok := rec.Value(f)
		if !ok {
			return solver.Geometry{}, fmt.Errorf("section %s has no %s", rec.Name, f)
		}
		vals[i] = v
	}
	return solver.Geometry{
		D:  vals[0],
		Bf: vals[1],
		Tf: vals[2],
		Tw: vals[3],
		R:  vals[4] - vals[2],
	}, nil
}

// SolverLoads maps named load components onto the solver load case.
// Missing components are zero.
func SolverLoads(loads map[string]float64) solver.Loads {
	return solver.Loads{
		N:  loads[model.LoadN],
		Mx: loads[model.LoadMx],
		My: loads[model.LoadMy],
		Vx: loads[model.LoadVx],
		Vy: loads[model.LoadVy],
		T:  loads[model.LoadT],
	}
}

// ComputeStresses solves every row in order. The first failure aborts the
// whole batch.
func ComputeStresses(ctx context.Context, rows []catalog.Record, fy float64, loads map[string]float64, s solver.Solver) ([]Result, error) {
	if fy <= 0 {
		return nil, fmt.Errorf("yield strength must be positive, got %g", fy)
	}
	if err := model.ValidateLoads(loads); err != nil {
		return nil, err
	}
	lc := SolverLoads(loads)
	results := make([]Result, 0, len(rows))
	for _, rec := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := Geometry(rec)
		if err != nil {
			return nil, err
		}
		field, err := s.Solve(ctx, g, lc)
		if err != nil {
			return nil, fmt.Errorf("failed to solve %s: %w", rec.Name, err)
		}
		vm := field.MaxVonMises()
		results = append(results, Result{
			Record:      rec,
			Fy:          fy,
			Loads:       model.MergeLoads(nil, loads),
			MaxVonMises: vm,
			DCR:         vm / fy,
		})
	}
	return results, nil
}

// MaxDCR returns the governing result, or false when results is empty.
func MaxDCR(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.DCR > best.DCR {
			best = r
		}
	}
	return best, true
}
