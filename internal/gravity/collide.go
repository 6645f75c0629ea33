package gravity

import "github.com/san-kum/gravsim/internal/vec"

type CollisionKind int

const (
	// Merged: two free bodies combined into the lower-index one.
	Merged CollisionKind = iota
	// Absorbed: a free body fell into a pinned sink and vanished.
	Absorbed
	// Destroyed: two free bodies removed each other.
	Destroyed
)

func (k CollisionKind) String() string {
	switch k {
	case Merged:
		return "merged"
	case Absorbed:
		return "absorbed"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Collision describes one resolved overlap. Survivor is the body left in
// the sequence (zero for Destroyed); Lost is the mass that left the system.
type Collision struct {
	Kind     CollisionKind
	Survivor Body
	Lost     float64
}

func overlapping(a, b Body) bool {
	// NaN distances never collide.
	return vec.Dist(a.Position, b.Position) < a.Radius()+b.Radius()
}

// resolveCollisions repeats full pairwise scans until one finds nothing to
// resolve. Every mutation removes at least one body, so it terminates.
func (s *Solver) resolveCollisions() {
	for s.resolveFirst() {
	}
}

// resolveFirst handles the first colliding pair in scan order and reports
// whether the sequence changed. Indices are stale afterwards, so the caller
// restarts the scan instead of continuing it.
func (s *Solver) resolveFirst() bool {
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := s.bodies[i], s.bodies[j]
			if !overlapping(a, b) {
				continue
			}

			switch {
			case a.Pinned && b.Pinned:
				continue
			case a.Pinned:
				s.remove(j)
				s.record(Collision{Kind: Absorbed, Survivor: a, Lost: b.Mass})
			case b.Pinned:
				s.remove(i)
				s.record(Collision{Kind: Absorbed, Survivor: b, Lost: a.Mass})
			case s.policy == Destroy:
				s.remove(j)
				s.remove(i)
				s.record(Collision{Kind: Destroyed, Lost: a.Mass + b.Mass})
			default:
				s.bodies[i] = merge(a, b)
				s.remove(j)
				s.record(Collision{Kind: Merged, Survivor: s.bodies[i]})
			}
			return true
		}
	}
	return false
}

// merge keeps a's position and conserves momentum.
func merge(a, b Body) Body {
	m := a.Mass + b.Mass
	a.Velocity = a.Momentum().Add(b.Momentum()).Div(m)
	a.Mass = m
	return a
}

func (s *Solver) remove(i int) {
	s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
}

func (s *Solver) record(c Collision) {
	s.collisions = append(s.collisions, c)
}
