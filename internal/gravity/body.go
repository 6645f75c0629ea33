package gravity

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/vec"
)

// Body is one simulated point mass.
//
// Acceleration holds the net force from the last tick, with the body's own
// mass included. Divide by Mass to get the true acceleration.
type Body struct {
	Position     vec.V2
	Velocity     vec.V2
	Acceleration vec.V2
	Pinned       bool
	Mass         float64
}

// Radius is derived from mass and used for collisions and rendering.
func (b Body) Radius() float64 {
	return math.Sqrt(b.Mass)
}

func (b Body) Momentum() vec.V2 {
	return b.Velocity.Scale(b.Mass)
}

func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.MagSq()
}

func (b Body) IsFinite() bool {
	return b.Position.IsFinite() && b.Velocity.IsFinite() && b.Acceleration.IsFinite() &&
		!math.IsNaN(b.Mass) && !math.IsInf(b.Mass, 0)
}

func (b Body) validate() error {
	if math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) || b.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive and finite, got %g", ErrInvalidBody, b.Mass)
	}
	if !b.Position.IsFinite() {
		return fmt.Errorf("%w: non-finite position %v", ErrInvalidBody, b.Position)
	}
	if !b.Velocity.IsFinite() {
		return fmt.Errorf("%w: non-finite velocity %v", ErrInvalidBody, b.Velocity)
	}
	return nil
}

func (b Body) String() string {
	pin := ""
	if b.Pinned {
		pin = " pinned"
	}
	return fmt.Sprintf("m=%.2f p=%v v=%v%s", b.Mass, b.Position, b.Velocity, pin)
}
