package solver

import (
	"context"

	"github.com/san-kum/nssim/internal/field"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent batches concurrently. Each batch gets its own
// Solver so sources and metrics are never shared between goroutines.
type Ensemble struct {
	workers     int
	concurrency int
	sources     func(idx int) ForcingSource
	metrics     func() []Metric
}

type EnsembleOption func(*Ensemble)

// WithSources builds the forcing source for batch idx.
func WithSources(fn func(idx int) ForcingSource) EnsembleOption {
	return func(e *Ensemble) { e.sources = fn }
}

// WithMetrics builds a fresh metric set per batch.
func WithMetrics(fn func() []Metric) EnsembleOption {
	return func(e *Ensemble) { e.metrics = fn }
}

// WithBatchWorkers caps the goroutines each batch uses internally.
func WithBatchWorkers(n int) EnsembleOption {
	return func(e *Ensemble) { e.workers = n }
}

func NewEnsemble(concurrency int, opts ...EnsembleOption) *Ensemble {
	e := &Ensemble{concurrency: concurrency}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run simulates every batch with the same forcing and config. Results keep
// the order of batches; the first failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, batches []field.Field, forcing field.Field, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i, w0 := range batches {
		i, w0 := i, w0
		g.Go(func() error {
			opts := []Option{WithWorkers(e.workers)}
			if e.sources != nil {
				if src := e.sources(i); src != nil {
					opts = append(opts, WithSource(src))
				}
			}

			s := New(opts...)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Simulate(ctx, w0, forcing, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
