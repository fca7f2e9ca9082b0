package solver

import (
	"math"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
)

// stepper owns the Fourier-space state of one simulation.
type stepper struct {
	grid    *spectral.Grid
	tr      *spectral.Transform
	cpool   *field.Pool[complex128]
	rpool   *field.Pool[float64]
	batch   int
	size    int
	workers int
	dt      float64

	// stoScale is sqrt(ν)/Δt, applied to raw Wiener increments in advance.
	stoScale float64

	wh []complex128 // vorticity, batch × N²
	fh []complex128 // deterministic forcing, 1 or batch samples

	explicit []float64
	implicit []float64
}

func newStepper(g *spectral.Grid, cfg Config, batch, workers int) *stepper {
	size := g.N * g.N
	st := &stepper{
		grid:     g,
		tr:       spectral.NewTransform(g.N),
		cpool:    field.NewPool[complex128](size),
		rpool:    field.NewPool[float64](size),
		batch:    batch,
		size:     size,
		workers:  workers,
		dt:       cfg.Dt,
		stoScale: math.Sqrt(cfg.Viscosity) / cfg.Dt,
		wh:       make([]complex128, batch*size),
		explicit: make([]float64, size),
		implicit: make([]float64, size),
	}
	for i, lap := range g.Lap {
		half := 0.5 * cfg.Dt * cfg.Viscosity * lap
		st.explicit[i] = 1.0 - half
		st.implicit[i] = 1.0 + half
	}
	return st
}

func (st *stepper) load(w0, forcing field.Field) error {
	ParallelFor(st.batch, st.workers, func(start, end int) {
		for b := start; b < end; b++ {
			st.tr.Forward(st.wh[b*st.size:(b+1)*st.size], w0.Sample(b))
		}
	})

	if forcing.Batch == 0 {
		st.fh = make([]complex128, st.size)
		return nil
	}
	fh, err := st.tr.ForwardField(forcing)
	if err != nil {
		return err
	}
	st.fh = fh.Data
	return nil
}

// step advances every sample by dt. dW holds the raw Wiener increments for
// the whole batch, or is nil. It is only read.
func (st *stepper) step(dW []complex128) {
	ParallelFor(st.batch, st.workers, func(start, end int) {
		for b := start; b < end; b++ {
			var sto []complex128
			if dW != nil {
				sto = dW[b*st.size : (b+1)*st.size]
			}
			st.advance(b, sto)
		}
	})
}

func (st *stepper) advance(b int, sto []complex128) {
	g, n := st.grid, st.size
	wh := st.wh[b*n : (b+1)*n]

	fh := st.fh
	if len(fh) > n {
		fh = fh[b*n : (b+1)*n]
	}

	psi := st.cpool.Get()
	uh := st.cpool.Get()
	vh := st.cpool.Get()
	wxh := st.cpool.Get()
	wyh := st.cpool.Get()
	u := st.rpool.Get()
	v := st.rpool.Get()
	wx := st.rpool.Get()
	wy := st.rpool.Get()
	defer func() {
		for _, buf := range [][]complex128{psi, uh, vh, wxh, wyh} {
			st.cpool.Put(buf)
		}
		for _, buf := range [][]float64{u, v, wx, wy} {
			st.rpool.Put(buf)
		}
	}()

	g.InvLap(psi, wh)
	g.Velocity(uh, vh, psi)
	g.DX(wxh, wh)
	g.DY(wyh, wh)

	st.tr.Inverse(u, uh)
	st.tr.Inverse(v, vh)
	st.tr.Inverse(wx, wxh)
	st.tr.Inverse(wy, wyh)

	// advection u·∇w, reusing u as the product buffer
	for i := range u {
		u[i] = u[i]*wx[i] + v[i]*wy[i]
	}
	nl := psi
	st.tr.Forward(nl, u)
	g.Truncate(nl)

	dt := st.dt
	for i, w := range wh {
		re := -dt*real(nl[i]) + dt*real(fh[i]) + st.explicit[i]*real(w)
		im := -dt*imag(nl[i]) + dt*imag(fh[i]) + st.explicit[i]*imag(w)
		if sto != nil {
			re += dt * (st.stoScale * real(sto[i]))
			im += dt * (st.stoScale * imag(sto[i]))
		}
		wh[i] = complex(re/st.implicit[i], im/st.implicit[i])
	}
}

// physical returns the current vorticity in physical space.
func (st *stepper) physical() field.Field {
	w := field.New(st.batch, st.grid.N)
	ParallelFor(st.batch, st.workers, func(start, end int) {
		for b := start; b < end; b++ {
			st.tr.Inverse(w.Sample(b), st.wh[b*st.size:(b+1)*st.size])
		}
	})
	return w
}
