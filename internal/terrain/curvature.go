package terrain

import "github.com/marcoaccardi/terrasonify/internal/raster"

// Curvature computes profile and planform curvature after Zevenbergen &
// Thorne (1987). Profile curvature is measured along the slope line
// (negative on convex slopes), planform curvature across it. Cells with
// zero gradient have no slope line and get curvature 0.
func Curvature(g *raster.Grid) (profile, planform *raster.Grid) {
	l := g.CellSize
	l2 := l * l
	profile = focal(g, func(w window) (float64, bool) {
		d, e, f, gx, hy := ztCoefficients(w, l, l2)
		den := gx*gx + hy*hy
		if den == 0 {
			return 0, true
		}
		return -2 * (d*gx*gx + e*hy*hy + f*gx*hy) / den, true
	})
	planform = focal(g, func(w window) (float64, bool) {
		d, e, f, gx, hy := ztCoefficients(w, l, l2)
		den := gx*gx + hy*hy
		if den == 0 {
			return 0, true
		}
		return 2 * (d*hy*hy + e*gx*gx - f*gx*hy) / den, true
	})
	return profile, planform
}

// ztCoefficients returns the Zevenbergen-Thorne surface coefficients for
// a 3x3 window: second derivatives d (x), e (y), cross term f, and first
// derivatives gx (x, eastward) and hy (y, northward).
func ztCoefficients(w window, l, l2 float64) (d, e, f, gx, hy float64) {
	d = ((w[3]+w[5])/2 - w[4]) / l2
	e = ((w[1]+w[7])/2 - w[4]) / l2
	f = (-w[0] + w[2] + w[6] - w[8]) / (4 * l2)
	gx = (w[5] - w[3]) / (2 * l)
	hy = (w[1] - w[7]) / (2 * l)
	return
}
