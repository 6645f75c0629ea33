package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/vec"
)

// BodyCount reports the number of bodies at the last observation.
type BodyCount struct {
	count int
}

func NewBodyCount() *BodyCount { return &BodyCount{} }

func (b *BodyCount) Name() string                         { return "bodies" }
func (b *BodyCount) Observe(s *gravity.Solver, t float64) { b.count = s.Len() }
func (b *BodyCount) Value() float64                       { return float64(b.count) }
func (b *BodyCount) Reset()                               { b.count = 0 }

// MassLoss is the mass that left the system since the first observation,
// through pinned sinks or the destroy policy.
type MassLoss struct {
	initial float64
	current float64
	samples int
}

func NewMassLoss() *MassLoss { return &MassLoss{} }

func (m *MassLoss) Name() string { return "mass_loss" }

func (m *MassLoss) Observe(s *gravity.Solver, t float64) {
	m.current = s.TotalMass()
	if m.samples == 0 {
		m.initial = m.current
	}
	m.samples++
}

func (m *MassLoss) Value() float64 { return m.initial - m.current }

func (m *MassLoss) Reset() {
	m.initial = 0
	m.current = 0
	m.samples = 0
}

// ComDrift is the largest distance the center of mass moved from where it
// was first defined. Samples with an undefined center are skipped.
type ComDrift struct {
	origin   vec.V2
	defined  bool
	maxDrift float64
}

func NewComDrift() *ComDrift { return &ComDrift{} }

func (c *ComDrift) Name() string { return "com_drift" }

func (c *ComDrift) Observe(s *gravity.Solver, t float64) {
	com, ok := s.CenterOfMass()
	if !ok {
		return
	}
	if !c.defined {
		c.origin = com
		c.defined = true
		return
	}
	c.maxDrift = math.Max(c.maxDrift, vec.Dist(com, c.origin))
}

func (c *ComDrift) Value() float64 { return c.maxDrift }

func (c *ComDrift) Reset() {
	c.origin = vec.Zero
	c.defined = false
	c.maxDrift = 0
}

// MomentumDrift is the largest change in free-body momentum magnitude.
type MomentumDrift struct {
	initial  vec.V2
	samples  int
	maxDrift float64
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(s *gravity.Solver, t float64) {
	p := s.Momentum()
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	if d := vec.Dist(p, m.initial); !math.IsNaN(d) {
		m.maxDrift = math.Max(m.maxDrift, d)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vec.Zero
	m.samples = 0
	m.maxDrift = 0
}

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewBodyCount(),
		NewMassLoss(),
		NewComDrift(),
		NewBounded(1e4),
	}
}
