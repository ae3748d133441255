package solver

import (
	"math"
	"sort"
)

// minThicknessCells is the least number of cells through any plate.
const minThicknessCells = 4

// mesh is a tensor grid of rectangular cells clipped to the section.
type mesh struct {
	xs, ys []float64 // Grid lines.
	filled [][]bool  // filled[row][col] where row indexes ys, col indexes xs.
}

func buildMesh(g Geometry, edge float64) mesh {
	cx, cy := g.filletCentre()

	xBreaks := []float64{-g.Bf / 2, -cx, -g.Tw / 2, 0, g.Tw / 2, cx, g.Bf / 2}
	yBreaks := []float64{-g.D / 2, -g.flangeInner(), -cy, 0, cy, g.flangeInner(), g.D / 2}

	xs := gridLines(xBreaks, edge, func(lo, hi float64) int {
		if math.Abs(lo+hi) < g.Tw {
			// Web halves share the through-thickness minimum.
			return minThicknessCells / 2
		}
		return 1
	})
	ys := gridLines(yBreaks, edge, func(lo, hi float64) int {
		if math.Min(math.Abs(lo), math.Abs(hi)) >= g.flangeInner()-1e-9 {
			return minThicknessCells
		}
		return 1
	})

	filled := make([][]bool, len(ys)-1)
	for r := range filled {
		filled[r] = make([]bool, len(xs)-1)
		ym := (ys[r] + ys[r+1]) / 2
		for c := range filled[r] {
			xm := (xs[c] + xs[c+1]) / 2
			filled[r][c] = g.contains(xm, ym)
		}
	}
	return mesh{xs: xs, ys: ys, filled: filled}
}

// gridLines splits every interval between sorted breaks into segments no
// longer than edge, with at least minCells(lo, hi) segments each.
func gridLines(breaks []float64, edge float64, minCells func(lo, hi float64) int) []float64 {
	sort.Float64s(breaks)
	uniq := breaks[:1]
	for _, b := range breaks[1:] {
		if b-uniq[len(uniq)-1] > 1e-9 {
			uniq = append(uniq, b)
		}
	}
	lines := []float64{uniq[0]}
	for i := 0; i+1 < len(uniq); i++ {
		lo, hi := uniq[i], uniq[i+1]
		n := int(math.Ceil((hi - lo) / edge))
		if m := minCells(lo, hi); n < m {
			n = m
		}
		step := (hi - lo) / float64(n)
		for k := 1; k < n; k++ {
			lines = append(lines, lo+float64(k)*step)
		}
		lines = append(lines, hi)
	}
	return lines
}

// nodeFilled reports whether any cell touching grid node (row, col) is
// material.
func (m mesh) nodeFilled(row, col int) bool {
	for r := row - 1; r <= row; r++ {
		if r < 0 || r >= len(m.filled) {
			continue
		}
		for c := col - 1; c <= col; c++ {
			if c < 0 || c >= len(m.filled[r]) {
				continue
			}
			if m.filled[r][c] {
				return true
			}
		}
	}
	return false
}
