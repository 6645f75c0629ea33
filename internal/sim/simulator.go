package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/gravsim/internal/gravity"
)

type Simulator struct {
	solver    *gravity.Solver
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(solver *gravity.Solver) *Simulator {
	return &Simulator{
		solver:    solver,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }
func (s *Simulator) Solver() *gravity.Solver { return s.solver }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	h := cfg.Dt * cfg.TimeFactor
	capacity := 2
	if cfg.SampleEvery > 0 {
		capacity += steps / cfg.SampleEvery
	}
	result := &Result{
		Frames:  make([]Frame, 0, min(capacity, framePrealloc)),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Frames = append(result.Frames, s.frame(t))
	s.observe(t)
	initialEnergy := s.solver.Energy()

	s.logger.Debug("run started", "bodies", s.solver.Len(), "steps", steps, "dt", h)

	sampled := true
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.solver.Step(h)
		t += h
		result.StepsTaken++
		s.tally(result, t)
		s.observe(t)

		if cfg.ValidateState && !s.solver.Valid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)", Wrapped: ErrInvalidState}
			s.logger.Warn("run halted", "step", i, "t", t, "err", err)
			result.Errors = append(result.Errors, err)
			sampled = false
			break
		}

		sampled = cfg.SampleEvery > 0 && (i+1)%cfg.SampleEvery == 0
		if sampled {
			result.Frames = append(result.Frames, s.frame(t))
		}
	}
	if !sampled {
		result.Frames = append(result.Frames, s.frame(t))
	}

	finalEnergy := s.solver.Energy()
	if initialEnergy != 0 && !math.IsNaN(finalEnergy) {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "bodies", s.solver.Len(), "merges", result.Merges, "absorbed", result.Absorptions)
	return result, nil
}

// RunWithCallback steps until the duration elapses or fn returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, fn func(*gravity.Solver, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	h := cfg.Dt * cfg.TimeFactor
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !fn(s.solver, t) {
			return nil
		}

		s.solver.Step(h)
		t += h

		if cfg.ValidateState && !s.solver.Valid() {
			return fmt.Errorf("%w at t=%.4f", ErrInvalidState, t)
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if !(cfg.TimeFactor > 0) || math.IsInf(cfg.TimeFactor, 0) {
		return fmt.Errorf("time factor must be positive, got %f", cfg.TimeFactor)
	}
	if n := cfg.Duration / cfg.Dt; n > MaxSteps {
		return fmt.Errorf("%w: %g exceeds %d", ErrTooManySteps, n, int64(MaxSteps))
	}
	return nil
}

func (s *Simulator) frame(t float64) Frame {
	return Frame{Time: t, Bodies: s.solver.Bodies()}
}

func (s *Simulator) observe(t float64) {
	for _, m := range s.metrics {
		m.Observe(s.solver, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.solver, t)
	}
}

func (s *Simulator) tally(r *Result, t float64) {
	for _, c := range s.solver.LastCollisions() {
		switch c.Kind {
		case gravity.Merged:
			r.Merges++
		case gravity.Absorbed:
			r.Absorptions++
		case gravity.Destroyed:
			r.Destructions++
		}
		s.logger.Debug("collision", "kind", c.Kind, "t", t, "survivor_mass", c.Survivor.Mass, "lost", c.Lost)
	}
}
