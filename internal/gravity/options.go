package gravity

import "fmt"

const (
	// DefaultG is the gravitational constant of the reference sandbox.
	DefaultG = 500.0

	// DefaultResolution is the number of preview sub-steps per time unit.
	DefaultResolution = 2
)

// Policy selects what happens when two free bodies collide.
type Policy int

const (
	// Merge keeps the lower-index body with the combined mass and
	// momentum-conserving velocity.
	Merge Policy = iota
	// Destroy removes both bodies.
	Destroy
)

func (p Policy) String() string {
	switch p {
	case Merge:
		return "merge"
	case Destroy:
		return "destroy"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "merge" or "destroy". The empty string selects Merge.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "merge":
		return Merge, nil
	case "destroy":
		return Destroy, nil
	default:
		return Merge, fmt.Errorf("unknown collision policy: %s", s)
	}
}

type Option func(*Solver)

func WithG(g float64) Option {
	return func(s *Solver) { s.g = g }
}

func WithPolicy(p Policy) Option {
	return func(s *Solver) { s.policy = p }
}

// WithMinSeparation clamps the distance used in force computation. Zero
// leaves coincident bodies unguarded and their forces non-finite.
func WithMinSeparation(d float64) Option {
	return func(s *Solver) { s.minSeparation = d }
}

// WithResolution sets preview sub-steps per time unit. Values below 1 are
// ignored.
func WithResolution(n int) Option {
	return func(s *Solver) {
		if n >= 1 {
			s.resolution = n
		}
	}
}
