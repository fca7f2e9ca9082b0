package solver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/forcing"
	"github.com/san-kum/nssim/internal/metrics"
	"github.com/san-kum/nssim/internal/solver"
)

func initialFields(n, batch int, seed int64) field.Field {
	grf, err := forcing.NewGaussianRF(n, 2.5, 7, seed)
	Expect(err).NotTo(HaveOccurred())
	return grf.Sample(batch)
}

var _ = Describe("Simulate", func() {
	var (
		ctx context.Context
		cfg solver.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = solver.Config{Viscosity: 1e-2, Duration: 0.5, Dt: 1e-3, RecordSteps: 10, ValidateState: true}
	})

	Context("without forcing", func() {
		It("dissipates kinetic energy", func() {
			energy, err := metrics.NewEnergy(16)
			Expect(err).NotTo(HaveOccurred())

			s := solver.New()
			s.AddMetric(energy)

			_, err = s.Simulate(ctx, initialFields(16, 1, 11), field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())

			history, _ := energy.History()
			Expect(history).To(HaveLen(10))
			Expect(history[0]).To(BeNumerically(">", 0))
			Expect(history[len(history)-1]).To(BeNumerically("<=", history[0]*(1+1e-9)))
			for i := 1; i < len(history); i++ {
				Expect(history[i]).To(BeNumerically("<=", history[i-1]*(1+1e-9)))
			}
		})

		It("is bit-for-bit reproducible", func() {
			w0 := initialFields(16, 2, 5)
			f := forcing.Periodic(16, 0.1)

			a, err := solver.New().Simulate(ctx, w0, f, cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := solver.New().Simulate(ctx, w0.Clone(), f, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Times).To(Equal(b.Times))
			for r := range a.Snapshots {
				Expect(a.Snapshots[r].Data).To(Equal(b.Snapshots[r].Data))
			}
		})

		It("keeps batch samples independent", func() {
			w0 := initialFields(16, 2, 9)
			f := forcing.Periodic(16, 0.1)

			batched, err := solver.New().Simulate(ctx, w0, f, cfg)
			Expect(err).NotTo(HaveOccurred())

			for b := 0; b < 2; b++ {
				single, err := solver.New().Simulate(ctx, w0.Select(b), f, cfg)
				Expect(err).NotTo(HaveOccurred())

				split := batched.Select(b)
				for r := range single.Snapshots {
					Expect(split.Snapshots[r].Sub(single.Snapshots[r]).MaxAbs()).To(BeNumerically("<", 1e-12))
				}
			}
		})

		It("broadcasts a single forcing field across the batch", func() {
			w0 := initialFields(16, 2, 3)
			f := forcing.Kolmogorov(16, 0.5, 2)
			perSample, err := field.Concat(f, f)
			Expect(err).NotTo(HaveOccurred())

			shared, err := solver.New().Simulate(ctx, w0, f, cfg)
			Expect(err).NotTo(HaveOccurred())
			explicit, err := solver.New().Simulate(ctx, w0, perSample, cfg)
			Expect(err).NotTo(HaveOccurred())

			last := len(shared.Snapshots) - 1
			Expect(shared.Snapshots[last].Data).To(Equal(explicit.Snapshots[last].Data))
		})
	})

	Context("with stochastic forcing", func() {
		newSource := func(seed int64) solver.ForcingSource {
			src, err := forcing.NewWiener(16, 0.05, seed)
			Expect(err).NotTo(HaveOccurred())
			return src
		}

		It("reproduces runs for a fixed seed", func() {
			w0 := initialFields(16, 2, 1)

			a, err := solver.New(solver.WithSource(newSource(42))).Simulate(ctx, w0, field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := solver.New(solver.WithSource(newSource(42))).Simulate(ctx, w0, field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())

			for r := range a.Snapshots {
				Expect(a.Snapshots[r].Data).To(Equal(b.Snapshots[r].Data))
			}
		})

		It("changes the trajectory relative to the unforced run", func() {
			w0 := initialFields(16, 1, 1)

			forced, err := solver.New(solver.WithSource(newSource(7))).Simulate(ctx, w0, field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())
			free, err := solver.New().Simulate(ctx, w0, field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())

			last := len(free.Snapshots) - 1
			Expect(forced.Snapshots[last].Sub(free.Snapshots[last]).MaxAbs()).To(BeNumerically(">", 0))
			Expect(forced.Snapshots[last].IsValid()).To(BeTrue())
		})

		It("keeps the zero mode of vorticity at zero", func() {
			w0 := initialFields(16, 1, 2)
			res, err := solver.New(solver.WithSource(newSource(3))).Simulate(ctx, w0, field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())

			for _, snap := range res.Snapshots {
				mean := 0.0
				for _, v := range snap.Data {
					mean += v
				}
				Expect(mean / float64(len(snap.Data))).To(BeNumerically("~", 0, 1e-10))
			}
		})
	})

	Context("recording", func() {
		It("records ten evenly spaced snapshots over unit time", func() {
			cfg.Duration, cfg.Dt, cfg.RecordSteps = 1.0, 0.01, 10
			res, err := solver.New().Simulate(ctx, initialFields(8, 1, 4), field.Field{}, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Snapshots).To(HaveLen(10))
			for i, tm := range res.Times {
				Expect(tm).To(BeNumerically("~", 0.1*float64(i+1), 1e-9))
			}
		})

		It("rejects uneven recording unless allowed", func() {
			cfg.RecordSteps = 7
			_, err := solver.New().Simulate(ctx, initialFields(8, 1, 4), field.Field{}, cfg)
			Expect(err).To(MatchError(solver.ErrConfig))
		})
	})
})
