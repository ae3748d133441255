package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultMeshSize is the target cell area in mm².
const DefaultMeshSize = 100.0

// Loads is a combined load case in N, N·mm.
type Loads struct {
	N  float64 // Axial force.
	Mx float64 // Moment about the strong axis.
	My float64 // Moment about the weak axis.
	Vx float64 // Shear along the flange width.
	Vy float64 // Shear along the depth.
	T  float64 // Torsion.
}

// Solver evaluates the stress field of one section under one load case.
type Solver interface {
	Solve(ctx context.Context, g Geometry, loads Loads) (*StressField, error)
}

// Properties are the elastic section properties of the meshed section.
type Properties struct {
	A   float64
	Cx  float64
	Cy  float64
	Ixx float64
	Iyy float64
	J   float64
}

// Node is a mesh vertex with its stress state in MPa.
type Node struct {
	X, Y     float64
	Sigma    float64
	Tau      float64
	VonMises float64
}

// StressField is the result of one solve.
type StressField struct {
	Properties Properties
	Nodes      []Node
}

// MaxVonMises returns the largest absolute von Mises stress over all nodes.
func (f *StressField) MaxVonMises() float64 {
	if f == nil || len(f.Nodes) == 0 {
		return 0
	}
	vm := make([]float64, len(f.Nodes))
	for i, n := range f.Nodes {
		vm[i] = math.Abs(n.VonMises)
	}
	return floats.Max(vm)
}

// CellSolver meshes the section into rectangular cells and evaluates
// beam-theory stresses at every mesh node.
type CellSolver struct {
	// MeshSize is the target cell area in mm². Zero means DefaultMeshSize.
	MeshSize float64
}

var _ Solver = CellSolver{}

// Solve validates the geometry, meshes it and returns node stresses.
func (s CellSolver) Solve(ctx context.Context, g Geometry, loads Loads) (*StressField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	size := s.MeshSize
	if size == 0 {
		size = DefaultMeshSize
	}
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("mesh size must be positive, got %g", s.MeshSize)
	}

	m := buildMesh(g, math.Sqrt(size))
	props, rowMoment, colMoment := sectionProperties(g, m)
	if props.A <= 0 || props.Ixx <= 0 || props.Iyy <= 0 {
		return nil, &GeometryError{Geometry: g, Reason: "mesh has no material"}
	}

	// First moments of area on the far side of every grid line.
	qx := suffixSums(rowMoment)
	qy := suffixSums(colMoment)

	nodes := make([]Node, 0, len(m.xs)*len(m.ys))
	for r, y := range m.ys {
		for c, x := range m.xs {
			if !m.nodeFilled(r, c) {
				continue
			}
			dx, dy := x-props.Cx, y-props.Cy
			sigma := loads.N/props.A + loads.Mx*dy/props.Ixx - loads.My*dx/props.Iyy

			var tau float64
			if b := g.widthAt(y); b > 0 {
				tau += math.Abs(loads.Vy * qx[r] / (props.Ixx * b))
			}
			if h := g.depthAt(x); h > 0 {
				tau += math.Abs(loads.Vx * qy[c] / (props.Iyy * h))
			}
			tau += math.Abs(loads.T * g.thicknessAt(x, y) / props.J)

			nodes = append(nodes, Node{
				X:        x,
				Y:        y,
				Sigma:    sigma,
				Tau:      tau,
				VonMises: math.Sqrt(sigma*sigma + 3*tau*tau),
			})
		}
	}
	return &StressField{Properties: props, Nodes: nodes}, nil
}

// sectionProperties integrates the filled cells. The returned row and column
// moments are each strip's first moment of area about the centroid.
func sectionProperties(g Geometry, m mesh) (Properties, []float64, []float64) {
	var areas, xc, yc []float64
	var rows, cols []int
	var selfXX, selfYY float64
	for r := range m.filled {
		hy := m.ys[r+1] - m.ys[r]
		for c, ok := range m.filled[r] {
			if !ok {
				continue
			}
			hx := m.xs[c+1] - m.xs[c]
			a := hx * hy
			areas = append(areas, a)
			xc = append(xc, (m.xs[c]+m.xs[c+1])/2)
			yc = append(yc, (m.ys[r]+m.ys[r+1])/2)
			rows = append(rows, r)
			cols = append(cols, c)
			selfXX += a * hy * hy / 12
			selfYY += a * hx * hx / 12
		}
	}

	var p Properties
	p.A = floats.Sum(areas)
	if p.A == 0 {
		return p, nil, nil
	}
	p.Cx = floats.Dot(areas, xc) / p.A
	p.Cy = floats.Dot(areas, yc) / p.A

	rowMoment := make([]float64, len(m.ys)-1)
	colMoment := make([]float64, len(m.xs)-1)
	for i, a := range areas {
		dx, dy := xc[i]-p.Cx, yc[i]-p.Cy
		p.Ixx += a * dy * dy
		p.Iyy += a * dx * dx
		rowMoment[rows[i]] += a * dy
		colMoment[cols[i]] += a * dx
	}
	p.Ixx += selfXX
	p.Iyy += selfYY
	p.J = g.torsionConstant()
	return p, rowMoment, colMoment
}

// suffixSums returns out[i] = sum(v[i:]), with len(out) == len(v)+1.
func suffixSums(v []float64) []float64 {
	out := make([]float64, len(v)+1)
	for i := len(v) - 1; i >= 0; i-- {
		out[i] = out[i+1] + v[i]
	}
	return out
}
