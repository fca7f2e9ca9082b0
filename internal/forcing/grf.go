package forcing

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
)

// GaussianRF draws mean-zero Gaussian random fields with covariance
// σ²(-Δ + τ²)^(-α), the usual source of initial vorticity.
type GaussianRF struct {
	grid    *spectral.Grid
	tr      *spectral.Transform
	alpha   float64
	tau     float64
	sqrtEig []float64
	rng     *rand.Rand
}

func NewGaussianRF(n int, alpha, tau float64, seed int64) (*GaussianRF, error) {
	if alpha <= 1 {
		return nil, fmt.Errorf("forcing: grf alpha must exceed 1, got %g", alpha)
	}
	if tau <= 0 {
		return nil, fmt.Errorf("forcing: grf tau must be positive, got %g", tau)
	}
	g, err := spectral.NewGrid(n)
	if err != nil {
		return nil, err
	}

	sigma := math.Pow(tau, 0.5*(2*alpha-2))
	r := &GaussianRF{
		grid:    g,
		tr:      spectral.NewTransform(n),
		alpha:   alpha,
		tau:     tau,
		sqrtEig: make([]float64, n*n),
		rng:     rand.New(rand.NewSource(seed)),
	}

	// g.Lap[0] is patched to 1, so use the raw wavenumbers here
	for i := range r.sqrtEig {
		k2 := g.Kx[i]*g.Kx[i] + g.Ky[i]*g.Ky[i]
		r.sqrtEig[i] = float64(n*n) * math.Sqrt2 * sigma *
			math.Pow(4*math.Pi*math.Pi*k2+tau*tau, -alpha/2)
	}
	r.sqrtEig[0] = 0

	return r, nil
}

func (r *GaussianRF) Sample(batch int) field.Field {
	n := r.grid.N
	out := field.New(batch, n)
	coeff := make([]complex128, n*n)

	for b := 0; b < batch; b++ {
		for i := range coeff {
			coeff[i] = complex(r.sqrtEig[i]*r.rng.NormFloat64(), r.sqrtEig[i]*r.rng.NormFloat64())
		}
		r.tr.Inverse(out.Sample(b), coeff)
	}

	return out
}
