package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/metrics"
	"github.com/san-kum/nssim/internal/solver"
	"github.com/san-kum/nssim/internal/spectral"
)

func modeField(n int, kx, ky int, amp float64) field.Field {
	f := field.New(1, n)
	xs := spectral.Coordinates(n)
	for i, x := range xs {
		for j, y := range xs {
			f.Set(0, i, j, amp*math.Cos(2*math.Pi*(float64(kx)*x+float64(ky)*y)))
		}
	}
	return f
}

func TestEnergySpectrum_SingleShell(t *testing.T) {
	n := 16
	g, _ := spectral.NewGrid(n)
	tr := spectral.NewTransform(n)

	w := modeField(n, 3, 0, 2).Sample(0)
	shells := EnergySpectrum(g, tr, w)

	if len(shells) != n/2+1 {
		t.Fatalf("expected %d shells, got %d", n/2+1, len(shells))
	}

	total := metrics.KineticEnergy(g, tr, w)
	for k, e := range shells {
		if k == 3 {
			if math.Abs(e-total) > 1e-12 {
				t.Errorf("shell 3 = %v, want total energy %v", e, total)
			}
			continue
		}
		if e > 1e-20 {
			t.Errorf("shell %d should be empty, got %v", k, e)
		}
	}
}

func TestPowerSpectrum(t *testing.T) {
	n := 64
	dt := 0.1
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 0.5 * float64(i) * dt)
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}

	freq := DominantFrequency(data, dt)
	// bin width is 1/(64·0.1) ≈ 0.156
	if math.Abs(freq-0.5) > 0.16 {
		t.Errorf("dominant frequency = %v, want ~0.5", freq)
	}
}

func TestSeparationRate_DiffusiveFlowContracts(t *testing.T) {
	w0 := modeField(16, 1, 0, 1)
	cfg := solver.Config{Viscosity: 0.05, Duration: 1.0, Dt: 0.01, RecordSteps: 10}

	rate, err := SeparationRate(context.Background(), w0, field.Field{}, cfg, 1e-6)
	if err != nil {
		t.Fatalf("SeparationRate: %v", err)
	}

	// a weak shear at Re ~ 3 is stable; the perturbation cannot decay much
	// faster than its own |k|²=2 viscous rate
	fastest := -cfg.Viscosity * 4 * math.Pi * math.Pi * 2
	if rate >= 0 || rate < 1.5*fastest {
		t.Errorf("rate = %v, want negative and above %v", rate, 1.5*fastest)
	}
}

func TestSeparationRate_InvalidArgs(t *testing.T) {
	cfg := solver.Config{Viscosity: 0.05, Duration: 1.0, Dt: 0.01, RecordSteps: 10}
	if _, err := SeparationRate(context.Background(), modeField(8, 1, 0, 1), field.Field{}, cfg, 0); err == nil {
		t.Error("expected error for zero perturbation")
	}
	cfg.RecordSteps = 1
	if _, err := SeparationRate(context.Background(), modeField(8, 1, 0, 1), field.Field{}, cfg, 1e-6); err == nil {
		t.Error("expected error for a single record")
	}
}
