package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/solver"
	"github.com/san-kum/nssim/internal/spectral"
	"gonum.org/v1/gonum/stat"
)

// SeparationRate estimates the largest Lyapunov exponent of the flow
// started from sample 0 of w0. It runs w0 and a copy perturbed by
// perturbation·sin(2πx)sin(2πy) as one batch of two, then fits
// ln(|δw(t)|/|δw(0)|) against the recording times.
func SeparationRate(ctx context.Context, w0, forcing field.Field, cfg solver.Config, perturbation float64) (float64, error) {
	if perturbation <= 0 {
		return 0, fmt.Errorf("analysis: perturbation must be positive, got %g", perturbation)
	}
	if cfg.RecordSteps < 2 {
		return 0, fmt.Errorf("analysis: need at least 2 record steps, got %d", cfg.RecordSteps)
	}
	if forcing.Batch > 1 {
		forcing = forcing.Select(0)
	}

	base := w0.Select(0)
	nudged := base.Clone()
	xs := spectral.Coordinates(base.N)
	for i, x := range xs {
		for j, y := range xs {
			nudged.Data[i*base.N+j] += perturbation * math.Sin(2*math.Pi*x) * math.Sin(2*math.Pi*y)
		}
	}
	d0 := nudged.Sub(base).Norm()

	pair, err := field.Concat(base, nudged)
	if err != nil {
		return 0, err
	}

	res, err := solver.New().Simulate(ctx, pair, forcing, cfg)
	if err != nil {
		return 0, err
	}

	times := make([]float64, 0, len(res.Snapshots))
	logs := make([]float64, 0, len(res.Snapshots))
	for r, snap := range res.Snapshots {
		sep := snap.Select(1).Sub(snap.Select(0)).Norm()
		if sep <= 0 {
			continue
		}
		times = append(times, res.Times[r])
		logs = append(logs, math.Log(sep/d0))
	}
	if len(times) < 2 {
		return 0, nil
	}

	_, slope := stat.LinearRegression(times, logs, nil, false)
	return slope, nil
}
