package solver

import (
	"math"

	"github.com/san-kum/nssim/internal/field"
)

// ForcingSource supplies one batch of Fourier-space Wiener increments per
// call, shaped batch × N × N. The solver scales them by sqrt(ν)/Δt without
// writing to the returned buffer, so a source may reuse it across calls.
type ForcingSource interface {
	SampleIncrement(batch int, dt float64) field.Spectrum
}

type Metric interface {
	Name() string
	Observe(w field.Field, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnRecord(step int, w field.Field, t float64)
}

type Config struct {
	Viscosity   float64
	Duration    float64
	Dt          float64
	RecordSteps int

	// ValidateState fails the run with ErrUnstable when a recorded
	// snapshot is not finite.
	ValidateState bool

	// AllowUnevenRecording accepts step counts that record_steps does not
	// divide; the last snapshot then falls before the final step.
	AllowUnevenRecording bool
}

func DefaultConfig() Config {
	return Config{
		Viscosity:     1e-3,
		Duration:      50.0,
		Dt:            1e-4,
		RecordSteps:   200,
		ValidateState: true,
	}
}

// Steps is ceil(duration/dt), tolerant of round-off in the quotient.
func Steps(duration, dt float64) int {
	q := duration / dt
	return int(math.Ceil(q - 1e-9*q))
}

type Result struct {
	// Snapshots[r] is the whole batch at Times[r].
	Snapshots  []field.Field
	Times      []float64
	StepsTaken int
	Metrics    map[string]float64
}

// Stack lays the snapshots out as batch × N × N × records, the order the
// training pipelines read.
func (r *Result) Stack() []float64 {
	if len(r.Snapshots) == 0 {
		return nil
	}
	first := r.Snapshots[0]
	records := len(r.Snapshots)
	out := make([]float64, len(first.Data)*records)
	for rec, snap := range r.Snapshots {
		for i, v := range snap.Data {
			out[i*records+rec] = v
		}
	}
	return out
}

// Select returns the result restricted to sample b.
func (r *Result) Select(b int) *Result {
	out := &Result{
		Snapshots:  make([]field.Field, len(r.Snapshots)),
		Times:      append([]float64(nil), r.Times...),
		StepsTaken: r.StepsTaken,
		Metrics:    r.Metrics,
	}
	for i, snap := range r.Snapshots {
		out.Snapshots[i] = snap.Select(b)
	}
	return out
}
