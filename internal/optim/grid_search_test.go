package optim

import (
	"context"
	"testing"

	"github.com/san-kum/nssim/internal/config"
)

func baseConfig() *config.Config {
	cfg := config.GetPreset("smoke")
	cfg.Resolution = 16
	cfg.Duration = 0.1
	cfg.Dt = 0.01
	cfg.RecordSteps = 2
	cfg.Seed = 3
	return cfg
}

func TestGridSearch_MinimizesEnergy(t *testing.T) {
	gs := NewGridSearch([]string{"viscosity"}, [][]float64{{1e-3, 1e-2, 1e-1}})

	best, err := gs.Search(context.Background(), baseConfig(), "energy")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best.Evaluated != 3 {
		t.Errorf("expected 3 evaluations, got %d", best.Evaluated)
	}
	if best.Params["viscosity"] != 1e-1 {
		t.Errorf("strongest damping should leave the least energy, got %v", best.Params)
	}
}

func TestGridSearch_Maximize(t *testing.T) {
	gs := NewGridSearch(
		[]string{"viscosity", "dt"},
		[][]float64{{1e-3, 1e-1}, {0.01, 0.005}},
	).Maximize()

	best, err := gs.Search(context.Background(), baseConfig(), "energy")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best.Evaluated != 4 {
		t.Errorf("expected 4 evaluations, got %d", best.Evaluated)
	}
	if best.Params["viscosity"] != 1e-3 {
		t.Errorf("weakest damping should keep the most energy, got %v", best.Params)
	}
}

func TestGridSearch_Errors(t *testing.T) {
	if _, err := NewGridSearch([]string{"viscosity"}, nil).Search(context.Background(), baseConfig(), "energy"); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"mass"}, [][]float64{{1}}).Search(context.Background(), baseConfig(), "energy"); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := NewGridSearch([]string{"viscosity"}, [][]float64{{1e-2}}).Search(context.Background(), baseConfig(), "nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
