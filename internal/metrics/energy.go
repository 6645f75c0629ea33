package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
)

// Energy is the mean total energy over the run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *gravity.Solver, t float64) {
	energy := s.Energy()
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}
	e.totalEnergy += energy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// energy. Collisions change the energy too, so drift is measured against
// the energy right after the most recent change in body count.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	bodies        int
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *gravity.Solver, t float64) {
	energy := s.Energy()

	if e.samples == 0 || s.Len() != e.bodies {
		e.initialEnergy = energy
		e.bodies = s.Len()
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		if !math.IsNaN(drift) {
			e.maxDrift = math.Max(e.maxDrift, drift)
		}
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.bodies = 0
	e.maxDrift = 0
	e.samples = 0
}
