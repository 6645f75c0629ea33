// Package vec provides the 2D vector used by the gravity solver.
//
// V2 is a value type. Methods return new values; the *Assign variants
// mutate the receiver. Zero denominators are not guarded: Normalize on the
// zero vector and Div by zero produce Inf/NaN components.
package vec

import (
	"fmt"
	"math"
)

type V2 struct {
	X, Y float64
}

var Zero = V2{}

func New(x, y float64) V2 { return V2{X: x, Y: y} }

// Splat returns a vector with both components set to v.
func Splat(v float64) V2 { return V2{X: v, Y: v} }

func (v V2) Add(o V2) V2 { return V2{v.X + o.X, v.Y + o.Y} }
func (v V2) Sub(o V2) V2 { return V2{v.X - o.X, v.Y - o.Y} }
func (v V2) Neg() V2     { return V2{-v.X, -v.Y} }

func (v V2) Scale(s float64) V2 { return V2{v.X * s, v.Y * s} }
func (v V2) Div(s float64) V2   { return V2{v.X / s, v.Y / s} }

func (v V2) Mag() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// MagSq skips the square root.
func (v V2) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v V2) Normalize() V2 {
	return v.Div(v.Mag())
}

// Abs returns the element-wise absolute value.
func (v V2) Abs() V2 {
	return V2{math.Abs(v.X), math.Abs(v.Y)}
}

// Lerp interpolates between v and o; t=0.5 is the midpoint.
func (v V2) Lerp(o V2, t float64) V2 {
	return V2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

func (v V2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

func (v *V2) AddAssign(o V2) {
	v.X += o.X
	v.Y += o.Y
}

func (v *V2) SubAssign(o V2) {
	v.X -= o.X
	v.Y -= o.Y
}

func (v *V2) ScaleAssign(s float64) {
	v.X *= s
	v.Y *= s
}

func (v V2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Dist is the Euclidean distance between a and b.
func Dist(a, b V2) float64 {
	return a.Sub(b).Mag()
}
