package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/sim"
)

// Experiment runs one scenario with a chosen set of metrics.
type Experiment struct {
	scenario  *config.Scenario
	simulator *sim.Simulator
	logger    *log.Logger
}

func New(sc *config.Scenario) *Experiment {
	return &Experiment{
		scenario: sc,
		logger:   log.New(io.Discard),
	}
}

func (e *Experiment) SetLogger(l *log.Logger) { e.logger = l }

// Setup builds the solver from the scenario and attaches the metrics. A
// scenario with Jitter set is perturbed once, seeded by its Seed.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	sc := e.scenario
	if sc.Jitter > 0 {
		sc = sc.Perturb(rand.New(rand.NewSource(sc.Seed)))
	}
	solver, err := sc.Build()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", e.scenario.Name, err)
	}
	e.simulator = sim.New(solver)
	e.simulator.SetLogger(e.logger)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.logger.Debug("running scenario", "name", e.scenario.Name, "bodies", len(e.scenario.Bodies))
	return e.simulator.Run(ctx, sim.ConfigFromScenario(e.scenario))
}

func (e *Experiment) Scenario() *config.Scenario { return e.scenario }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
