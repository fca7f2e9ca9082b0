package metrics

import (
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
	"gonum.org/v1/gonum/floats"
)

// KineticEnergy is ½⟨|u|²⟩ over the torus for one vorticity sample,
// evaluated spectrally as ½ Σ_{k≠0} |ŵ_k|²/(4π²|k|²) / N⁴.
func KineticEnergy(g *spectral.Grid, tr *spectral.Transform, w []float64) float64 {
	wh := make([]complex128, len(w))
	tr.Forward(wh, w)

	sum := 0.0
	for i := 1; i < len(wh); i++ {
		re, im := real(wh[i]), imag(wh[i])
		sum += (re*re + im*im) / g.Lap[i]
	}
	n4 := float64(len(w)) * float64(len(w))
	return 0.5 * sum / n4
}

// Enstrophy is ½⟨w²⟩ for one sample.
func Enstrophy(w []float64) float64 {
	return 0.5 * floats.Dot(w, w) / float64(len(w))
}

// Energy tracks the batch-mean kinetic energy at each record point; its
// value is the latest observation.
type Energy struct {
	name    string
	grid    *spectral.Grid
	tr      *spectral.Transform
	history []float64
	times   []float64
}

func NewEnergy(n int) (*Energy, error) {
	g, err := spectral.NewGrid(n)
	if err != nil {
		return nil, err
	}
	return &Energy{
		name: "energy",
		grid: g,
		tr:   spectral.NewTransform(n),
	}, nil
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w field.Field, t float64) {
	if w.N != e.grid.N || w.Batch == 0 {
		return
	}
	total := 0.0
	for b := 0; b < w.Batch; b++ {
		total += KineticEnergy(e.grid, e.tr, w.Sample(b))
	}
	e.history = append(e.history, total/float64(w.Batch))
	e.times = append(e.times, t)
}

func (e *Energy) Value() float64 {
	if len(e.history) == 0 {
		return 0
	}
	return e.history[len(e.history)-1]
}

func (e *Energy) History() ([]float64, []float64) { return e.history, e.times }

func (e *Energy) Reset() {
	e.history = e.history[:0]
	e.times = e.times[:0]
}

// EnstrophyMetric tracks batch-mean enstrophy like Energy.
type EnstrophyMetric struct {
	name    string
	history []float64
}

func NewEnstrophy() *EnstrophyMetric {
	return &EnstrophyMetric{name: "enstrophy"}
}

func (e *EnstrophyMetric) Name() string { return e.name }

func (e *EnstrophyMetric) Observe(w field.Field, t float64) {
	if w.Batch == 0 {
		return
	}
	total := 0.0
	for b := 0; b < w.Batch; b++ {
		total += Enstrophy(w.Sample(b))
	}
	e.history = append(e.history, total/float64(w.Batch))
}

func (e *EnstrophyMetric) Value() float64 {
	if len(e.history) == 0 {
		return 0
	}
	return e.history[len(e.history)-1]
}

func (e *EnstrophyMetric) History() []float64 { return e.history }

func (e *EnstrophyMetric) Reset() { e.history = e.history[:0] }
