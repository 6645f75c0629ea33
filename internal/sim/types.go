package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/gravity"
)

var (
	// ErrInvalidState indicates a body with a NaN or infinite component.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrTooManySteps rejects runs whose Duration/Dt exceeds MaxSteps.
	ErrTooManySteps = errors.New("sim: too many steps")
)

const (
	// MaxSteps bounds the number of ticks in one run.
	MaxSteps = 1 << 40

	framePrealloc = 1 << 12
)

// Frame is a snapshot of the body sequence at a simulation time.
type Frame struct {
	Time   float64
	Bodies []gravity.Body
}

type Metric interface {
	Name() string
	Observe(s *gravity.Solver, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *gravity.Solver, t float64)
}

// Config drives a run. Each of the Duration/Dt ticks advances simulation
// time by Dt*TimeFactor.
type Config struct {
	Dt            float64
	Duration      float64
	TimeFactor    float64
	SampleEvery   int
	ValidateState bool
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Dt:            config.DefaultDt,
		Duration:      config.DefaultDuration,
		TimeFactor:    config.DefaultTimeFactor,
		SampleEvery:   config.DefaultSample,
		ValidateState: true,
	}
}

func ConfigFromScenario(sc *config.Scenario) Config {
	return Config{
		Dt:            sc.Dt,
		Duration:      sc.Duration,
		TimeFactor:    sc.TimeFactor,
		SampleEvery:   sc.SampleEvery,
		ValidateState: sc.ValidateState,
		Seed:          sc.Seed,
	}
}

type Result struct {
	Frames       []Frame
	Metrics      map[string]float64
	EnergyDrift  float64
	StepsTaken   int
	Merges       int
	Absorptions  int
	Destructions int
	Errors       []error
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Wrapped }
