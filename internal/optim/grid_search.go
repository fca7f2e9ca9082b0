package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nssim/internal/automation"
	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/experiment"
	"github.com/san-kum/nssim/internal/solver"
)

// GridSearch evaluates every combination of parameter values and keeps the
// one with the smallest (or largest) metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize makes the search keep the largest metric instead.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Best is the winning combination. Evaluated counts the runs that
// finished; Unstable those that blew up and were skipped.
type Best struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Unstable  int
}

func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (*Best, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := &Best{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, best); err != nil {
		return nil, err
	}
	if best.Params == nil {
		return best, fmt.Errorf("optim: no stable run among %d candidates", best.Unstable)
	}
	return best, nil
}

func (g *GridSearch) better(val, current float64) bool {
	if g.maximize {
		return val > current
	}
	return val < current
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *Best,
) error {
	if depth == len(g.paramNames) {
		cfg := *base
		cfg.ValidateState = true
		cfg.AllowUneven = true
		for name, v := range current {
			if err := automation.SetParam(&cfg, name, v); err != nil {
				return err
			}
		}

		run, err := experiment.New(&cfg).Run(ctx)
		if errors.Is(err, solver.ErrUnstable) {
			best.Unstable++
			return nil
		}
		if err != nil {
			return err
		}
		best.Evaluated++

		val, ok := run.Result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: unknown metric %s", metricName)
		}
		if g.better(val, best.Value) {
			best.Value = val
			best.Params = make(map[string]float64)
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best); err != nil {
			return err
		}
	}
	return nil
}
