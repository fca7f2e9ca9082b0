package forcing

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
)

// Wiener samples Fourier-space increments of a Q-Wiener process on the unit
// torus with covariance eigenvalues q_k = exp(-alpha·|k|²). The zero mode
// carries no noise and the spectrum is Hermitian, so the forcing it
// represents is real and mean-free.
type Wiener struct {
	grid  *spectral.Grid
	alpha float64
	sqrtQ []float64
	rng   *rand.Rand
	draw  []complex128
}

func NewWiener(n int, alpha float64, seed int64) (*Wiener, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("forcing: wiener alpha must be positive, got %g", alpha)
	}
	g, err := spectral.NewGrid(n)
	if err != nil {
		return nil, err
	}

	w := &Wiener{
		grid:  g,
		alpha: alpha,
		sqrtQ: make([]float64, n*n),
		rng:   rand.New(rand.NewSource(seed)),
		draw:  make([]complex128, n*n),
	}
	for i := range w.sqrtQ {
		k2 := g.Kx[i]*g.Kx[i] + g.Ky[i]*g.Ky[i]
		w.sqrtQ[i] = math.Sqrt(math.Exp(-alpha * k2))
	}
	w.sqrtQ[0] = 0

	return w, nil
}

func (w *Wiener) N() int { return w.grid.N }

// SampleIncrement draws one increment per sample over a step of length dt.
// Coefficients carry the N² factor of the unnormalised forward transform.
func (w *Wiener) SampleIncrement(batch int, dt float64) field.Spectrum {
	n := w.grid.N
	out := field.NewSpectrum(batch, n)
	scale := float64(n*n) * math.Sqrt(dt)

	for b := 0; b < batch; b++ {
		for i := range w.draw {
			w.draw[i] = complex(w.rng.NormFloat64(), w.rng.NormFloat64())
		}
		dst := out.Sample(b)
		for i := range dst {
			sym := 0.5 * (w.draw[i] + cmplx.Conj(w.draw[w.grid.Mirror(i)]))
			dst[i] = complex(scale*w.sqrtQ[i], 0) * sym
		}
	}

	return out
}
