package viz

import (
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

const (
	minScale = 1e-3
	maxScale = 1e3
)

// Viewport maps world coordinates onto a sub-pixel grid. World y points up;
// canvas y points down.
type Viewport struct {
	Center vec.V2
	Scale  float64 // world units per sub-pixel
	W, H   int
}

// NewViewport fits a square of half-width extent into a w by h pixel grid.
func NewViewport(w, h int, extent float64) Viewport {
	v := Viewport{W: w, H: h, Scale: 1}
	v.fitExtent(extent)
	return v
}

func (v *Viewport) fitExtent(extent float64) {
	short := math.Min(float64(v.W), float64(v.H))
	if extent <= 0 || short <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		return
	}
	v.Scale = clampScale(2 * extent / short)
}

// ToCanvas returns the sub-pixel holding p.
func (v Viewport) ToCanvas(p vec.V2) (int, int) {
	x := (p.X - v.Center.X) / v.Scale
	y := (p.Y - v.Center.Y) / v.Scale
	return v.W/2 + int(math.Round(x)), v.H/2 - int(math.Round(y))
}

// ToWorld is the inverse of ToCanvas up to rounding.
func (v Viewport) ToWorld(x, y int) vec.V2 {
	return vec.New(
		v.Center.X+float64(x-v.W/2)*v.Scale,
		v.Center.Y-float64(y-v.H/2)*v.Scale,
	)
}

// Pixels converts a world length to sub-pixels.
func (v Viewport) Pixels(length float64) int {
	return int(math.Round(length / v.Scale))
}

// Visible reports whether p falls on the grid.
func (v Viewport) Visible(p vec.V2) bool {
	x, y := v.ToCanvas(p)
	return x >= 0 && y >= 0 && x < v.W && y < v.H
}

func (v *Viewport) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	v.Scale = clampScale(v.Scale / factor)
}

func (v *Viewport) Pan(d vec.V2) {
	v.Center.AddAssign(d)
}

// Fit centers the view on the bodies and scales it so all of them, with
// their radii and a margin, are visible.
func (v *Viewport) Fit(bodies []gravity.Body) {
	if len(bodies) == 0 {
		return
	}
	minP := vec.Splat(math.Inf(1))
	maxP := vec.Splat(math.Inf(-1))
	for _, b := range bodies {
		if !b.IsFinite() {
			continue
		}
		r := b.Radius()
		minP = vec.New(math.Min(minP.X, b.Position.X-r), math.Min(minP.Y, b.Position.Y-r))
		maxP = vec.New(math.Max(maxP.X, b.Position.X+r), math.Max(maxP.Y, b.Position.Y+r))
	}
	if !minP.IsFinite() || !maxP.IsFinite() {
		return
	}

	v.Center = minP.Lerp(maxP, 0.5)
	span := maxP.Sub(minP)
	w, h := float64(v.W), float64(v.H)
	if w <= 0 || h <= 0 {
		return
	}
	v.Scale = clampScale(1.1 * math.Max(span.X/w, span.Y/h))
}

func clampScale(s float64) float64 {
	return math.Max(minScale, math.Min(maxScale, s))
}
