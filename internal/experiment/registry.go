package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

// Registry maps metric names to constructors so runs can pick metrics by
// name from the command line.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["momentum_drift"] = func() sim.Metric { return metrics.NewMomentumDrift() }
	r.metrics["bodies"] = func() sim.Metric { return metrics.NewBodyCount() }
	r.metrics["mass_loss"] = func() sim.Metric { return metrics.NewMassLoss() }
	r.metrics["com_drift"] = func() sim.Metric { return metrics.NewComDrift() }
	r.metrics["bounded"] = func() sim.Metric { return metrics.NewBounded(1e4) }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Metrics returns fresh instances of the named metrics, or of every metric
// when names is empty.
func (r *Registry) Metrics(names []string) ([]sim.Metric, error) {
	if len(names) == 0 {
		names = r.ListMetrics()
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
