package config

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

const (
	DefaultDt         = 0.001
	DefaultDuration   = 10.0
	DefaultTimeFactor = 1.0
	DefaultSample     = 10
)

type Scenario struct {
	Name              string       `yaml:"name"`
	G                 float64      `yaml:"g"`
	Dt                float64      `yaml:"dt"`
	Duration          float64      `yaml:"duration"`
	TimeFactor        float64      `yaml:"time_factor"`
	MinSeparation     float64      `yaml:"min_separation"`
	Collision         string       `yaml:"collision"`
	PreviewResolution int          `yaml:"preview_resolution"`
	SampleEvery       int          `yaml:"sample_every"`
	ValidateState     bool         `yaml:"validate_state"`
	Seed              int64        `yaml:"seed"`
	Jitter            float64      `yaml:"jitter"`
	AutoOrbit         bool         `yaml:"auto_orbit"`
	Bodies            []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Pos    [2]float64 `yaml:"pos,flow"`
	Vel    [2]float64 `yaml:"vel,flow"`
	Mass   float64    `yaml:"mass"`
	Pinned bool       `yaml:"pinned,omitempty"`
}

func (b BodyConfig) Position() vec.V2 { return vec.New(b.Pos[0], b.Pos[1]) }
func (b BodyConfig) Velocity() vec.V2 { return vec.New(b.Vel[0], b.Vel[1]) }

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:              "default",
		G:                 gravity.DefaultG,
		Dt:                DefaultDt,
		Duration:          DefaultDuration,
		TimeFactor:        DefaultTimeFactor,
		Collision:         gravity.Merge.String(),
		PreviewResolution: gravity.DefaultResolution,
		SampleEvery:       DefaultSample,
		ValidateState:     true,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultScenario()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.AutoOrbit {
		SetOrbitalVelocities(s.G, s.Bodies)
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", s.Dt)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", s.Duration)
	}
	if s.G <= 0 {
		return fmt.Errorf("g must be positive, got %f", s.G)
	}
	if s.TimeFactor <= 0 {
		return fmt.Errorf("time_factor must be positive, got %f", s.TimeFactor)
	}
	if s.PreviewResolution < 1 {
		return fmt.Errorf("preview_resolution must be at least 1, got %d", s.PreviewResolution)
	}
	if _, err := gravity.ParsePolicy(s.Collision); err != nil {
		return err
	}
	for i, b := range s.Bodies {
		if b.Mass <= 0 || math.IsNaN(b.Mass) {
			return fmt.Errorf("body %d: mass must be positive, got %f", i, b.Mass)
		}
	}
	return nil
}

func (s *Scenario) SolverOptions() []gravity.Option {
	policy, _ := gravity.ParsePolicy(s.Collision)
	return []gravity.Option{
		gravity.WithG(s.G),
		gravity.WithPolicy(policy),
		gravity.WithMinSeparation(s.MinSeparation),
		gravity.WithResolution(s.PreviewResolution),
	}
}

// Build validates the scenario and returns a solver holding its bodies.
func (s *Scenario) Build() (*gravity.Solver, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	solver := gravity.New(s.SolverOptions()...)
	for i, b := range s.Bodies {
		if err := solver.AddBody(b.Position(), b.Velocity(), b.Pinned, b.Mass); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	return solver, nil
}

// Clone deep-copies the scenario so callers can perturb bodies freely.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Bodies = make([]BodyConfig, len(s.Bodies))
	copy(c.Bodies, s.Bodies)
	return &c
}

// SetOrbitalVelocities gives every resting free body the circular orbit
// speed around the first pinned body, perpendicular to the radius.
func SetOrbitalVelocities(g float64, bodies []BodyConfig) {
	center := -1
	for i, b := range bodies {
		if b.Pinned {
			center = i
			break
		}
	}
	if center < 0 {
		return
	}
	c := bodies[center]
	for i := range bodies {
		b := &bodies[i]
		if i == center || b.Pinned || b.Vel != [2]float64{} {
			continue
		}
		dx := b.Pos[0] - c.Pos[0]
		dy := b.Pos[1] - c.Pos[1]
		r := math.Hypot(dx, dy)
		if r == 0 {
			continue
		}
		v := math.Sqrt(g * c.Mass / r)
		b.Vel[0] = -dy / r * v
		b.Vel[1] = dx / r * v
	}
}

// Resolve returns the named preset, or loads arg as a scenario file.
func Resolve(arg string) (*Scenario, error) {
	if s := GetPreset(arg); s != nil {
		return s, nil
	}
	if _, err := os.Stat(arg); err != nil {
		return nil, fmt.Errorf("unknown scenario: %s (presets: %v)", arg, ListPresets())
	}
	return Load(arg)
}

// Perturb returns a copy with every free body displaced by up to Jitter in
// each axis.
func (s *Scenario) Perturb(rng *rand.Rand) *Scenario {
	c := s.Clone()
	if s.Jitter <= 0 {
		return c
	}
	for i := range c.Bodies {
		if c.Bodies[i].Pinned {
			continue
		}
		c.Bodies[i].Pos[0] += (rng.Float64()*2 - 1) * s.Jitter
		c.Bodies[i].Pos[1] += (rng.Float64()*2 - 1) * s.Jitter
	}
	return c
}
