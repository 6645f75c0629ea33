package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
)

var ErrNoCandidates = errors.New("optim: no parameter combination produced a result")

// Params are the scenario fields a search may vary.
var Params = []string{"g", "dt", "min_separation", "time_factor", "jitter"}

// Apply sets a named scenario parameter.
func Apply(sc *config.Scenario, name string, val float64) error {
	switch name {
	case "g":
		sc.G = val
	case "dt":
		sc.Dt = val
	case "min_separation":
		sc.MinSeparation = val
	case "time_factor":
		sc.TimeFactor = val
	case "jitter":
		sc.Jitter = val
	default:
		return fmt.Errorf("unknown parameter: %s (known: %v)", name, Params)
	}
	return nil
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search evaluates every grid point and returns the one with the smallest
// metric value along with all trials.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	trials := make([]Trial, 0)
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &trials); err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Value: math.Inf(1)}
	found := false
	for _, tr := range trials {
		if tr.Err == nil && tr.Value < best.Value {
			best = tr
			found = true
		}
	}
	if !found {
		return Trial{}, trials, ErrNoCandidates
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		*trials = append(*trials, evaluate(ctx, current, buildExperiment, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Trial {
	tr := Trial{Params: params, Value: math.NaN()}

	exp, err := buildExperiment(params)
	if err != nil {
		tr.Err = err
		return tr
	}
	result, err := exp.Run(ctx)
	if err != nil {
		tr.Err = err
		return tr
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		tr.Err = fmt.Errorf("metric %s not recorded", metricName)
		return tr
	}
	tr.Value = val
	return tr
}

// SortedKeys returns the parameter names of a trial in a stable order.
func (t Trial) SortedKeys() []string {
	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
