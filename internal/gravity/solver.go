package gravity

import (
	"math"

	"github.com/san-kum/gravsim/internal/vec"
)

// Solver owns the live body sequence. Order is insertion order and only
// matters as the tie-break during collision resolution.
type Solver struct {
	bodies        []Body
	forces        []vec.V2
	collisions    []Collision
	g             float64
	policy        Policy
	minSeparation float64
	resolution    int
}

func New(opts ...Option) *Solver {
	s := &Solver{
		bodies:     make([]Body, 0),
		g:          DefaultG,
		policy:     Merge,
		resolution: DefaultResolution,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) G() float64             { return s.g }
func (s *Solver) Policy() Policy         { return s.policy }
func (s *Solver) Resolution() int        { return s.resolution }
func (s *Solver) MinSeparation() float64 { return s.minSeparation }
func (s *Solver) Len() int               { return len(s.bodies) }

// AddBody appends a body with zero acceleration.
func (s *Solver) AddBody(pos, vel vec.V2, pinned bool, mass float64) error {
	b := Body{Position: pos, Velocity: vel, Pinned: pinned, Mass: mass}
	if err := b.validate(); err != nil {
		return err
	}
	s.bodies = append(s.bodies, b)
	return nil
}

func (s *Solver) Clear() {
	s.bodies = s.bodies[:0]
	s.collisions = s.collisions[:0]
}

// RemoveLast drops the most recently inserted body that still exists.
func (s *Solver) RemoveLast() bool {
	if len(s.bodies) == 0 {
		return false
	}
	s.bodies = s.bodies[:len(s.bodies)-1]
	return true
}

// Bodies returns a copy of the live sequence.
func (s *Solver) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Body returns the body at index i. Indices are invalidated by Step.
func (s *Solver) Body(i int) (Body, bool) {
	if i < 0 || i >= len(s.bodies) {
		return Body{}, false
	}
	return s.bodies[i], true
}

// Step runs one full tick: forces, integration, collision resolution.
func (s *Solver) Step(dt float64) {
	s.collisions = s.collisions[:0]
	s.computeForces()
	s.integrate(dt)
	s.resolveCollisions()
}

// LastCollisions reports the collisions resolved by the most recent Step.
func (s *Solver) LastCollisions() []Collision {
	out := make([]Collision, len(s.collisions))
	copy(out, s.collisions)
	return out
}

// computeForces fills a parallel buffer and applies it in one pass so no
// body is read after it has been updated.
func (s *Solver) computeForces() {
	n := len(s.bodies)
	if cap(s.forces) < n {
		s.forces = make([]vec.V2, n)
	}
	s.forces = s.forces[:n]

	for i := range s.bodies {
		bi := &s.bodies[i]
		if bi.Pinned {
			continue
		}
		var sum vec.V2
		for j := range s.bodies {
			if i == j {
				continue
			}
			sum.AddAssign(s.pull(bi.Position, bi.Mass, s.bodies[j]))
		}
		s.forces[i] = sum
	}

	for i := range s.bodies {
		if s.bodies[i].Pinned {
			continue
		}
		s.bodies[i].Acceleration = s.forces[i]
	}
}

// pull is the force exerted by b on a mass m at p.
func (s *Solver) pull(p vec.V2, m float64, b Body) vec.V2 {
	d := b.Position.Sub(p)
	r := d.Mag()
	if r < s.minSeparation {
		r = s.minSeparation
	}
	return d.Scale(s.g * m * b.Mass / (r * r * r))
}

// integrate applies semi-implicit Euler: velocity first, then position
// with the updated velocity.
func (s *Solver) integrate(dt float64) {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Pinned {
			continue
		}
		b.Velocity.AddAssign(b.Acceleration.Div(b.Mass).Scale(dt))
		b.Position.AddAssign(b.Velocity.Scale(dt))
	}
}

func (s *Solver) TotalMass() float64 {
	total := 0.0
	for _, b := range s.bodies {
		total += b.Mass
	}
	return total
}

// CenterOfMass returns false when there are no bodies or the total mass is
// not positive.
func (s *Solver) CenterOfMass() (vec.V2, bool) {
	if len(s.bodies) == 0 {
		return vec.Zero, false
	}
	var weighted vec.V2
	total := 0.0
	for _, b := range s.bodies {
		weighted.AddAssign(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if !(total > 0) {
		return vec.Zero, false
	}
	com := weighted.Div(total)
	return com, com.IsFinite()
}

// Valid reports whether every body is finite.
func (s *Solver) Valid() bool {
	for _, b := range s.bodies {
		if !b.IsFinite() {
			return false
		}
	}
	return true
}

// Energy is kinetic plus pairwise potential energy. Pinned bodies carry no
// kinetic energy.
func (s *Solver) Energy() float64 {
	ke, pe := 0.0, 0.0
	for i, bi := range s.bodies {
		if !bi.Pinned {
			ke += bi.KineticEnergy()
		}
		for j := i + 1; j < len(s.bodies); j++ {
			bj := s.bodies[j]
			r := math.Max(vec.Dist(bi.Position, bj.Position), s.minSeparation)
			pe -= s.g * bi.Mass * bj.Mass / r
		}
	}
	return ke + pe
}

// Momentum sums over free bodies; pinned bodies act as external anchors.
func (s *Solver) Momentum() vec.V2 {
	var p vec.V2
	for _, b := range s.bodies {
		if b.Pinned {
			continue
		}
		p.AddAssign(b.Momentum())
	}
	return p
}

// AngularMomentum about the origin, free bodies only.
func (s *Solver) AngularMomentum() float64 {
	l := 0.0
	for _, b := range s.bodies {
		if b.Pinned {
			continue
		}
		l += b.Mass * (b.Position.X*b.Velocity.Y - b.Position.Y*b.Velocity.X)
	}
	return l
}
