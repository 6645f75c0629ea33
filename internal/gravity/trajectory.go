package gravity

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/vec"
)

const (
	// MaxPreviewSteps bounds duration*resolution for one preview.
	MaxPreviewSteps = 1 << 20

	previewPrealloc = 1 << 10
)

// PredictTrajectory simulates candidate against the frozen live bodies for
// duration time units at Resolution sub-steps per unit and returns the
// positions it passes through. The candidate feels the live bodies but does
// not pull on them, and the solver is not modified.
//
// The path stops before the first sub-step that lands the candidate inside
// a live body, or whose midpoint with the previous position lies inside one
// (a body skipped over within a single sub-step), and at the first
// non-finite position. A pinned candidate never moves and yields an empty
// path. Previews longer than MaxPreviewSteps sub-steps are rejected.
func (s *Solver) PredictTrajectory(candidate Body, duration float64) ([]vec.V2, error) {
	if err := candidate.validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: duration %g", ErrInvalidDuration, duration)
	}
	if candidate.Pinned || duration <= 0 {
		return []vec.V2{}, nil
	}

	n := duration * float64(s.resolution)
	if n > MaxPreviewSteps {
		return nil, fmt.Errorf("%w: %g sub-steps exceeds %d", ErrInvalidDuration, n, MaxPreviewSteps)
	}
	steps := int(n)
	h := 1.0 / float64(s.resolution)
	path := make([]vec.V2, 0, min(steps, previewPrealloc))

	c := candidate
	rc := c.Radius()
	for k := 0; k < steps; k++ {
		var f vec.V2
		for _, b := range s.bodies {
			f.AddAssign(s.pull(c.Position, c.Mass, b))
		}
		c.Acceleration = f

		prev := c.Position
		c.Velocity.AddAssign(f.Div(c.Mass).Scale(h))
		c.Position.AddAssign(c.Velocity.Scale(h))

		if !c.Position.IsFinite() || s.blocks(prev, c.Position, rc) {
			break
		}
		path = append(path, c.Position)
	}
	return path, nil
}

func (s *Solver) blocks(prev, cur vec.V2, rc float64) bool {
	mid := prev.Lerp(cur, 0.5)
	for _, b := range s.bodies {
		rb := b.Radius()
		if vec.Dist(cur, b.Position) < rc+rb {
			return true
		}
		if vec.Dist(mid, b.Position) < rb {
			return true
		}
	}
	return false
}
