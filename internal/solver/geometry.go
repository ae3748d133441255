// Package solver computes elastic cross-section stresses for W shapes.
//
// Coordinates are in mm with the origin at the section mid-height on the web
// centre line. X runs along the flange width, Y along the depth.
package solver

import (
	"fmt"
	"math"
)

// Geometry describes a doubly symmetric I section.
type Geometry struct {
	D  float64 // Overall depth.
	Bf float64 // Flange width.
	Tf float64 // Flange thickness.
	Tw float64 // Web thickness.
	R  float64 // Web-to-flange fillet radius.
}

// GeometryError reports dimensions that cannot form an I section.
type GeometryError struct {
	Geometry Geometry
	Reason   string
}

func (e *GeometryError) Error() string {
	g := e.Geometry
	return fmt.Sprintf("invalid section geometry (d=%g bf=%g tf=%g tw=%g r=%g): %s",
		g.D, g.Bf, g.Tf, g.Tw, g.R, e.Reason)
}

// Validate checks that the plates and fillets fit together.
func (g Geometry) Validate() error {
	fail := func(reason string) error {
		return &GeometryError{Geometry: g, Reason: reason}
	}
	for _, v := range []float64{g.D, g.Bf, g.Tf, g.Tw, g.R} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fail("dimensions must be finite")
		}
	}
	switch {
	case g.D <= 0 || g.Bf <= 0 || g.Tf <= 0 || g.Tw <= 0:
		return fail("dimensions must be positive")
	case g.R < 0:
		return fail("fillet radius cannot be negative")
	case 2*g.Tf >= g.D:
		return fail("flanges overlap the full depth")
	case g.Tw >= g.Bf:
		return fail("web is wider than the flange")
	case g.Tw/2+g.R > g.Bf/2:
		return fail("fillet runs past the flange tip")
	case g.Tf+g.R > g.D/2:
		return fail("fillets overlap at mid-depth")
	}
	return nil
}

// Area returns the analytic area including the four fillets.
func (g Geometry) Area() float64 {
	web := (g.D - 2*g.Tf) * g.Tw
	fillets := 4 * (1 - math.Pi/4) * g.R * g.R
	return 2*g.Bf*g.Tf + web + fillets
}

// flangeInner is the distance from mid-depth to the inner flange face.
func (g Geometry) flangeInner() float64 {
	return g.D/2 - g.Tf
}

// filletCentre returns the fillet arc centre in the first quadrant.
func (g Geometry) filletCentre() (cx, cy float64) {
	return g.Tw/2 + g.R, g.flangeInner() - g.R
}

// contains reports whether the point lies in the section.
func (g Geometry) contains(x, y float64) bool {
	ax, ay := math.Abs(x), math.Abs(y)
	if ay > g.D/2 || ax > g.Bf/2 {
		return false
	}
	if ay >= g.flangeInner() || ax <= g.Tw/2 {
		return true
	}
	cx, cy := g.filletCentre()
	if ax > cx || ay < cy {
		return false
	}
	dx, dy := cx-ax, ay-cy
	return dx*dx+dy*dy >= g.R*g.R
}

// widthAt is the material width cut by a horizontal line at y. At the
// flange-to-web boundary the narrower side is used.
func (g Geometry) widthAt(y float64) float64 {
	ay := math.Abs(y)
	if ay > g.D/2 {
		return 0
	}
	if ay > g.flangeInner() {
		return g.Bf
	}
	_, cy := g.filletCentre()
	if g.R > 0 && ay >= cy {
		dy := ay - cy
		return g.Tw + 2*(g.R-math.Sqrt(g.R*g.R-dy*dy))
	}
	return g.Tw
}

// depthAt is the material depth cut by a vertical line at x.
func (g Geometry) depthAt(x float64) float64 {
	ax := math.Abs(x)
	if ax > g.Bf/2 {
		return 0
	}
	if ax < g.Tw/2 {
		return g.D
	}
	cx, _ := g.filletCentre()
	if g.R > 0 && ax <= cx {
		ex := cx - ax
		return 2*g.Tf + 2*(g.R-math.Sqrt(g.R*g.R-ex*ex))
	}
	return 2 * g.Tf
}

// thicknessAt is the plate thickness governing torsional shear at a point.
func (g Geometry) thicknessAt(_, y float64) float64 {
	if math.Abs(y) >= g.flangeInner() {
		return g.Tf
	}
	return g.Tw
}

// torsionConstant is the thin-walled St Venant constant.
func (g Geometry) torsionConstant() float64 {
	return (2*g.Bf*math.Pow(g.Tf, 3) + (g.D-g.Tf)*math.Pow(g.Tw, 3)) / 3
}
