package solver

import (
	"context"
	"fmt"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
)

type Solver struct {
	source    ForcingSource
	workers   int
	metrics   []Metric
	observers []Observer
}

type Option func(*Solver)

// WithSource adds stochastic forcing drawn from src every step.
func WithSource(src ForcingSource) Option {
	return func(s *Solver) { s.source = src }
}

// WithWorkers caps the goroutines used across the batch; 0 means NumCPU.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

func New(opts ...Option) *Solver {
	s := &Solver{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Simulate integrates w0 to cfg.Duration and returns the recorded
// snapshots. forcing is a physical-space field of batch 1 (shared by every
// sample) or of w0's batch; a zero-value Field means no deterministic
// forcing. On cancellation the partial result is returned with ctx.Err().
func (s *Solver) Simulate(ctx context.Context, w0 field.Field, forcing field.Field, cfg Config) (*Result, error) {
	steps, recordEvery, err := validate(w0, forcing, cfg)
	if err != nil {
		return nil, err
	}

	grid, err := spectral.NewGrid(w0.N)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	st := newStepper(grid, cfg, w0.Batch, s.workers)
	if err := st.load(w0, forcing); err != nil {
		return nil, err
	}

	result := &Result{
		Snapshots: make([]field.Field, 0, cfg.RecordSteps),
		Times:     make([]float64, 0, cfg.RecordSteps),
		Metrics:   make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0

	for j := 0; j < steps; j++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var inc []complex128
		if s.source != nil {
			dW := s.source.SampleIncrement(w0.Batch, cfg.Dt)
			if dW.Batch != w0.Batch || dW.N != w0.N || len(dW.Data) != len(st.wh) {
				return result, fmt.Errorf("%w: forcing source returned %dx%dx%d, want %dx%dx%d",
					ErrShapeMismatch, dW.Batch, dW.N, dW.N, w0.Batch, w0.N, w0.N)
			}
			inc = dW.Data
		}

		st.step(inc)
		t += cfg.Dt
		result.StepsTaken++

		if (j+1)%recordEvery != 0 || len(result.Snapshots) >= cfg.RecordSteps {
			continue
		}

		w := st.physical()
		if cfg.ValidateState && !w.IsValid() {
			return result, &SimulationError{Step: j + 1, Time: t, Wrapped: ErrUnstable}
		}

		result.Snapshots = append(result.Snapshots, w)
		result.Times = append(result.Times, t)

		for _, m := range s.metrics {
			m.Observe(w, t)
		}
		for _, obs := range s.observers {
			obs.OnRecord(j+1, w, t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// validate returns the step count and the record interval.
func validate(w0, forcing field.Field, cfg Config) (int, int, error) {
	if cfg.Viscosity <= 0 {
		return 0, 0, fmt.Errorf("%w: viscosity must be positive, got %g", ErrConfig, cfg.Viscosity)
	}
	if cfg.Duration <= 0 {
		return 0, 0, fmt.Errorf("%w: duration must be positive, got %g", ErrConfig, cfg.Duration)
	}
	if cfg.Dt <= 0 {
		return 0, 0, fmt.Errorf("%w: dt must be positive, got %g", ErrConfig, cfg.Dt)
	}
	if w0.Batch <= 0 || len(w0.Data) != w0.Batch*w0.N*w0.N {
		return 0, 0, fmt.Errorf("%w: w0 holds %d values for batch %d of %dx%d",
			ErrShapeMismatch, len(w0.Data), w0.Batch, w0.N, w0.N)
	}
	if !spectral.IsPowerOfTwo(w0.N) || w0.N < 2 {
		return 0, 0, fmt.Errorf("%w: grid size %d is not a power of two", ErrConfig, w0.N)
	}
	if forcing.Batch != 0 {
		if forcing.N != w0.N {
			return 0, 0, fmt.Errorf("%w: forcing grid %d, w0 grid %d", ErrShapeMismatch, forcing.N, w0.N)
		}
		if forcing.Batch != 1 && forcing.Batch != w0.Batch {
			return 0, 0, fmt.Errorf("%w: forcing batch %d, w0 batch %d", ErrShapeMismatch, forcing.Batch, w0.Batch)
		}
		if len(forcing.Data) != forcing.Batch*forcing.N*forcing.N {
			return 0, 0, fmt.Errorf("%w: forcing holds %d values", ErrShapeMismatch, len(forcing.Data))
		}
	}

	steps := Steps(cfg.Duration, cfg.Dt)
	if cfg.RecordSteps <= 0 {
		return 0, 0, fmt.Errorf("%w: record steps must be positive, got %d", ErrConfig, cfg.RecordSteps)
	}
	if cfg.RecordSteps > steps {
		return 0, 0, fmt.Errorf("%w: %d record steps exceed %d time steps", ErrConfig, cfg.RecordSteps, steps)
	}
	if steps%cfg.RecordSteps != 0 && !cfg.AllowUnevenRecording {
		return 0, 0, fmt.Errorf("%w: %d record steps do not divide %d time steps", ErrConfig, cfg.RecordSteps, steps)
	}

	return steps, steps / cfg.RecordSteps, nil
}
