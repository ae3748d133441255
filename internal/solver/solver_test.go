package solver

import (
	"context"
	"errors"
	"math"
	"testing"
)

// Close to a W310X97.
var w310 = Geometry{D: 308, Bf: 305, Tf: 15.4, Tw: 9.9, R: 15}

// Same plates without fillets, so the mesh is exact.
var w310Sharp = Geometry{D: 308, Bf: 305, Tf: 15.4, Tw: 9.9}

func solve(t *testing.T, g Geometry, loads Loads) *StressField {
	t.Helper()
	field, err := CellSolver{MeshSize: 25}.Solve(context.Background(), g, loads)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	return field
}

func within(got, want, rel float64) bool {
	return math.Abs(got-want) <= rel*math.Abs(want)
}

func sharpIxx(g Geometry) float64 {
	inner := g.D - 2*g.Tf
	return (g.Bf*math.Pow(g.D, 3) - (g.Bf-g.Tw)*math.Pow(inner, 3)) / 12
}

func TestAreaMatchesAnalytic(t *testing.T) {
	for _, g := range []Geometry{w310, w310Sharp} {
		field := solve(t, g, Loads{})
		if !within(field.Properties.A, g.Area(), 0.01) {
			t.Fatalf("expected area %.1f, got %.1f", g.Area(), field.Properties.A)
		}
		if math.Abs(field.Properties.Cx) > 1e-6 || math.Abs(field.Properties.Cy) > 1e-6 {
			t.Fatalf("expected centroid at origin, got (%g, %g)", field.Properties.Cx, field.Properties.Cy)
		}
	}
}

func TestPureAxial(t *testing.T) {
	const n = 1.2e6
	field := solve(t, w310, Loads{N: n})
	want := n / field.Properties.A
	for _, node := range field.Nodes {
		if !within(node.Sigma, want, 1e-9) || node.Tau != 0 {
			t.Fatalf("expected uniform %.3f MPa, got sigma=%.3f tau=%.3f at (%g, %g)",
				want, node.Sigma, node.Tau, node.X, node.Y)
		}
	}
	if !within(field.MaxVonMises(), n/w310.Area(), 0.01) {
		t.Fatalf("expected max %.3f, got %.3f", n/w310.Area(), field.MaxVonMises())
	}
}

func TestPureStrongAxisMoment(t *testing.T) {
	const mx = 3e8
	for _, g := range []Geometry{w310, w310Sharp} {
		field := solve(t, g, Loads{Mx: mx})
		want := mx * (g.D / 2) / sharpIxx(g)
		if !within(field.MaxVonMises(), want, 0.02) {
			t.Fatalf("expected max %.3f, got %.3f", want, field.MaxVonMises())
		}
	}
}

func TestSharpIxxIsExact(t *testing.T) {
	field := solve(t, w310Sharp, Loads{})
	if !within(field.Properties.Ixx, sharpIxx(w310Sharp), 1e-9) {
		t.Fatalf("expected Ixx %.6g, got %.6g", sharpIxx(w310Sharp), field.Properties.Ixx)
	}
}

func TestShearPeaksAtNeutralAxis(t *testing.T) {
	const vy = 4e5
	g := w310Sharp
	field := solve(t, g, Loads{Vy: vy})

	inner := g.D/2 - g.Tf
	q := g.Bf*g.Tf*(inner+g.Tf/2) + g.Tw*inner*inner/2
	tau := vy * q / (sharpIxx(g) * g.Tw)
	want := math.Sqrt(3) * tau
	if !within(field.MaxVonMises(), want, 1e-6) {
		t.Fatalf("expected max %.4f, got %.4f", want, field.MaxVonMises())
	}
	for _, node := range field.Nodes {
		if math.Abs(node.Y) == g.D/2 && node.Tau > 1e-9 {
			t.Fatalf("expected zero shear at the extreme fibre, got %g", node.Tau)
		}
	}
}

func TestTorsionUsesThickerPlate(t *testing.T) {
	const torque = 2e6
	g := w310Sharp
	field := solve(t, g, Loads{T: torque})
	j := (2*g.Bf*math.Pow(g.Tf, 3) + (g.D-g.Tf)*math.Pow(g.Tw, 3)) / 3
	want := math.Sqrt(3) * torque * g.Tf / j
	if !within(field.MaxVonMises(), want, 1e-9) {
		t.Fatalf("expected max %.4f, got %.4f", want, field.MaxVonMises())
	}
}

func TestWeakAxisMomentSign(t *testing.T) {
	field := solve(t, w310Sharp, Loads{My: 1e7})
	for _, node := range field.Nodes {
		if node.X > 0 && node.Sigma >= 0 {
			t.Fatalf("expected compression for x > 0, got %g at x=%g", node.Sigma, node.X)
		}
	}
}

func TestInvalidGeometry(t *testing.T) {
	cases := []Geometry{
		{D: 0, Bf: 100, Tf: 10, Tw: 5},
		{D: 100, Bf: 100, Tf: 50, Tw: 5},
		{D: 100, Bf: 10, Tf: 10, Tw: 12},
		{D: 100, Bf: 100, Tf: 10, Tw: 5, R: -1},
		{D: 100, Bf: 100, Tf: 10, Tw: 5, R: 60},
		{D: 100, Bf: 100, Tf: 10, Tw: 5, R: math.NaN()},
	}
	for _, g := range cases {
		_, err := CellSolver{}.Solve(context.Background(), g, Loads{N: 1})
		var gerr *GeometryError
		if !errors.As(err, &gerr) {
			t.Fatalf("expected GeometryError for %+v, got %v", g, err)
		}
	}
}

func TestInvalidMeshSize(t *testing.T) {
	_, err := CellSolver{MeshSize: -4}.Solve(context.Background(), w310, Loads{})
	if err == nil {
		t.Fatalf("expected error for negative mesh size")
	}
}

func TestMinimumCellsThroughThickness(t *testing.T) {
	m := buildMesh(w310Sharp, 1000)
	var flangeLines int
	for _, y := range m.ys {
		if y >= w310Sharp.D/2-w310Sharp.Tf-1e-9 {
			flangeLines++
		}
	}
	if flangeLines < minThicknessCells+1 {
		t.Fatalf("expected at least %d grid lines through the flange, got %d", minThicknessCells+1, flangeLines)
	}
	var webLines int
	for _, x := range m.xs {
		if math.Abs(x) <= w310Sharp.Tw/2+1e-9 {
			webLines++
		}
	}
	if webLines < minThicknessCells+1 {
		t.Fatalf("expected at least %d grid lines through the web, got %d", minThicknessCells+1, webLines)
	}
}

func TestSolveHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (CellSolver{}).Solve(ctx, w310, Loads{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMaxVonMisesEmpty(t *testing.T) {
	var field *StressField
	if got := field.MaxVonMises(); got != 0 {
		t.Fatalf("expected 0, got %g", got)
	}
}
