package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/forcing"
	"github.com/san-kum/nssim/internal/metrics"
	"github.com/san-kum/nssim/internal/solver"
	"github.com/san-kum/nssim/internal/spectral"
)

// InitialSampler draws the next batch of initial vorticity fields.
type InitialSampler func(batch int) field.Field

// StabilityThreshold bounds |w| before a run is flagged unstable.
const StabilityThreshold = 1e6

type Registry struct {
	initial map[string]func(cfg *config.Config) (InitialSampler, error)
	forcing map[string]func(cfg *config.Config) field.Field
	noise   map[string]func(cfg *config.Config, seed int64) (solver.ForcingSource, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		initial: make(map[string]func(*config.Config) (InitialSampler, error)),
		forcing: make(map[string]func(*config.Config) field.Field),
		noise:   make(map[string]func(*config.Config, int64) (solver.ForcingSource, error)),
	}

	r.initial["grf"] = func(cfg *config.Config) (InitialSampler, error) {
		grf, err := forcing.NewGaussianRF(cfg.Resolution, cfg.Initial.Alpha, cfg.Initial.Tau, cfg.Seed)
		if err != nil {
			return nil, err
		}
		return func(batch int) field.Field {
			return grf.Sample(batch).Scale(amplitude(cfg))
		}, nil
	}
	r.initial["taylor_green"] = func(cfg *config.Config) (InitialSampler, error) {
		return func(batch int) field.Field {
			return tile(taylorGreen(cfg.Resolution, amplitude(cfg)), batch)
		}, nil
	}
	r.initial["zero"] = func(cfg *config.Config) (InitialSampler, error) {
		return func(batch int) field.Field {
			return field.New(batch, cfg.Resolution)
		}, nil
	}

	r.forcing["none"] = func(cfg *config.Config) field.Field { return field.Field{} }
	r.forcing["periodic"] = func(cfg *config.Config) field.Field {
		return forcing.Periodic(cfg.Resolution, cfg.Forcing.Amplitude)
	}
	r.forcing["kolmogorov"] = func(cfg *config.Config) field.Field {
		return forcing.Kolmogorov(cfg.Resolution, cfg.Forcing.Amplitude, cfg.Forcing.Wavenumber)
	}

	r.noise["none"] = func(cfg *config.Config, seed int64) (solver.ForcingSource, error) {
		return nil, nil
	}
	r.noise["wiener"] = func(cfg *config.Config, seed int64) (solver.ForcingSource, error) {
		return forcing.NewWiener(cfg.Resolution, cfg.Noise.Alpha, seed)
	}

	return r
}

func (r *Registry) GetInitial(cfg *config.Config) (InitialSampler, error) {
	fn, ok := r.initial[cfg.Initial.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown initial condition: %s", cfg.Initial.Kind)
	}
	return fn(cfg)
}

func (r *Registry) GetForcing(cfg *config.Config) (field.Field, error) {
	fn, ok := r.forcing[cfg.Forcing.Kind]
	if !ok {
		return field.Field{}, fmt.Errorf("unknown forcing: %s", cfg.Forcing.Kind)
	}
	return fn(cfg), nil
}

// GetNoise returns nil for the "none" kind.
func (r *Registry) GetNoise(cfg *config.Config, seed int64) (solver.ForcingSource, error) {
	fn, ok := r.noise[cfg.Noise.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown noise: %s", cfg.Noise.Kind)
	}
	return fn(cfg, seed)
}

func (r *Registry) ListInitial() []string { return keys(r.initial) }
func (r *Registry) ListForcing() []string { return keys(r.forcing) }
func (r *Registry) ListNoise() []string   { return keys(r.noise) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(n int) ([]solver.Metric, error) {
	energy, err := metrics.NewEnergy(n)
	if err != nil {
		return nil, err
	}
	return []solver.Metric{
		energy,
		metrics.NewEnstrophy(),
		metrics.NewPeakVorticity(),
		metrics.NewStability(StabilityThreshold),
	}, nil
}

// amplitude treats an unset initial amplitude as 1.
func amplitude(cfg *config.Config) float64 {
	if cfg.Initial.Amp == 0 {
		return 1
	}
	return cfg.Initial.Amp
}

func taylorGreen(n int, amp float64) field.Field {
	xs := spectral.Coordinates(n)
	w := field.New(1, n)
	for i, x := range xs {
		for j, y := range xs {
			w.Set(0, i, j, 2*amp*math.Sin(2*math.Pi*x)*math.Sin(2*math.Pi*y))
		}
	}
	return w
}

func tile(f field.Field, batch int) field.Field {
	out := field.New(batch, f.N)
	for b := 0; b < batch; b++ {
		copy(out.Sample(b), f.Data)
	}
	return out
}
