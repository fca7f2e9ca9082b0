package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/nssim/internal/config"
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/solver"
)

// noiseSeedOffset keeps the noise streams apart from the initial-condition
// stream drawn from the same base seed.
const noiseSeedOffset = 1 << 20

// Run is one finished experiment: the initial fields and what the solver
// recorded from them.
type Run struct {
	Config  *config.Config
	Initial field.Field
	Result  *solver.Result
}

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	observers []solver.Observer
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// AddObserver attaches o to single-batch runs.
func (e *Experiment) AddObserver(o solver.Observer) {
	e.observers = append(e.observers, o)
}

// Run simulates a single batch of cfg.Batch samples.
func (e *Experiment) Run(ctx context.Context) (*Run, error) {
	sample, err := e.registry.GetInitial(e.cfg)
	if err != nil {
		return nil, err
	}
	f, err := e.registry.GetForcing(e.cfg)
	if err != nil {
		return nil, err
	}
	src, err := e.registry.GetNoise(e.cfg, e.cfg.Seed+noiseSeedOffset)
	if err != nil {
		return nil, err
	}
	ms, err := e.registry.DefaultMetrics(e.cfg.Resolution)
	if err != nil {
		return nil, err
	}

	opts := []solver.Option{solver.WithWorkers(e.cfg.Workers)}
	if src != nil {
		opts = append(opts, solver.WithSource(src))
	}
	s := solver.New(opts...)
	for _, m := range ms {
		s.AddMetric(m)
	}
	for _, o := range e.observers {
		s.AddObserver(o)
	}

	batch := e.cfg.Batch
	if batch <= 0 {
		batch = 1
	}
	w0 := sample(batch)

	// a partial result is still returned alongside a cancellation error
	res, err := s.Simulate(ctx, w0, f, e.cfg.Solver())
	return &Run{Config: e.cfg, Initial: w0, Result: res}, err
}

// Generate simulates cfg.Samples samples in batches of cfg.Batch, running
// up to concurrency batches at once, and merges them into one Run.
func (e *Experiment) Generate(ctx context.Context, concurrency int) (*Run, error) {
	sample, err := e.registry.GetInitial(e.cfg)
	if err != nil {
		return nil, err
	}
	f, err := e.registry.GetForcing(e.cfg)
	if err != nil {
		return nil, err
	}
	// fail fast on bad noise parameters before spawning any batch
	if _, err := e.registry.GetNoise(e.cfg, e.cfg.Seed); err != nil {
		return nil, err
	}

	sizes := e.cfg.Batches()
	batches := make([]field.Field, len(sizes))
	for i, size := range sizes {
		batches[i] = sample(size)
	}

	ens := solver.NewEnsemble(concurrency,
		solver.WithBatchWorkers(e.cfg.Workers),
		solver.WithSources(func(idx int) solver.ForcingSource {
			src, _ := e.registry.GetNoise(e.cfg, e.cfg.Seed+noiseSeedOffset+int64(idx))
			return src
		}),
		solver.WithMetrics(func() []solver.Metric {
			ms, _ := e.registry.DefaultMetrics(e.cfg.Resolution)
			return ms
		}),
	)

	results, err := ens.Run(ctx, batches, f, e.cfg.Solver())
	if err != nil {
		return nil, err
	}

	initial, err := field.Concat(batches...)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(results)
	if err != nil {
		return nil, err
	}
	return &Run{Config: e.cfg, Initial: initial, Result: merged}, nil
}

// Merge joins per-batch results along the batch axis. Metric values are
// averaged over batches.
func Merge(results []*solver.Result) (*solver.Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("experiment: nothing to merge")
	}

	first := results[0]
	out := &solver.Result{
		Snapshots:  make([]field.Field, len(first.Snapshots)),
		Times:      append([]float64(nil), first.Times...),
		StepsTaken: first.StepsTaken,
		Metrics:    make(map[string]float64),
	}

	for r := range first.Snapshots {
		parts := make([]field.Field, len(results))
		for i, res := range results {
			if len(res.Snapshots) != len(first.Snapshots) {
				return nil, fmt.Errorf("experiment: batch %d recorded %d snapshots, want %d",
					i, len(res.Snapshots), len(first.Snapshots))
			}
			parts[i] = res.Snapshots[r]
		}
		snap, err := field.Concat(parts...)
		if err != nil {
			return nil, err
		}
		out.Snapshots[r] = snap
	}

	for _, res := range results {
		for name, v := range res.Metrics {
			out.Metrics[name] += v / float64(len(results))
		}
	}
	return out, nil
}
