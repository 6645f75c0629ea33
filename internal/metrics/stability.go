package metrics

import (
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

// Bounded is the fraction of samples in which every body stayed finite and
// within radius of the origin.
type Bounded struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBounded(radius float64) *Bounded {
	return &Bounded{
		name:   "bounded",
		radius: radius,
	}
}

func (b *Bounded) Name() string {
	return b.name
}

func (b *Bounded) Observe(s *gravity.Solver, t float64) {
	b.samples++
	for _, body := range s.Bodies() {
		if !body.IsFinite() || vec.Dist(body.Position, vec.Zero) > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
