package sim

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gravsim/internal/config"
)

// Ensemble runs perturbed copies of one scenario concurrently. Every run
// builds its own solver; nothing is shared between goroutines.
type Ensemble struct {
	scenario   *config.Scenario
	numRuns    int
	seedStart  int64
	newMetrics func() []Metric
	logger     *log.Logger
}

func NewEnsemble(sc *config.Scenario, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		scenario:  sc,
		numRuns:   numRuns,
		seedStart: seedStart,
		logger:    log.New(io.Discard),
	}
}

// WithMetrics sets a factory called once per run, so metric state is never
// shared across runs.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.newMetrics = fn
	return e
}

func (e *Ensemble) WithLogger(l *log.Logger) *Ensemble {
	e.logger = l
	return e
}

// Run returns one result per run, in seed order. The first failure cancels
// the remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			seed := e.seedStart + int64(i)
			sc := e.scenario.Perturb(rand.New(rand.NewSource(seed)))

			solver, err := sc.Build()
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}

			s := New(solver)
			s.SetLogger(e.logger.With("run", i))
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			cfg := ConfigFromScenario(sc)
			cfg.Seed = seed
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
