package spectral

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrGridSize = errors.New("spectral: grid size must be a power of two")

// Grid is derived once from N and shared read-only by every step.
type Grid struct {
	N    int
	KMax int

	// Kx varies along the first spatial axis, Ky along the second.
	Kx  []float64
	Ky  []float64
	Lap []float64

	Dealias []bool
}

func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func NewGrid(n int) (*Grid, error) {
	if n < 2 || !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d", ErrGridSize, n)
	}

	g := &Grid{
		N:       n,
		KMax:    n / 2,
		Kx:      make([]float64, n*n),
		Ky:      make([]float64, n*n),
		Lap:     make([]float64, n*n),
		Dealias: make([]bool, n*n),
	}

	k := Wavenumbers(n)
	cutoff := (2.0 / 3.0) * float64(g.KMax)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			idx := i*n + j
			kx, ky := float64(k[i]), float64(k[j])
			g.Kx[idx] = kx
			g.Ky[idx] = ky
			g.Lap[idx] = 4 * math.Pi * math.Pi * (kx*kx + ky*ky)
			g.Dealias[idx] = math.Abs(kx) <= cutoff && math.Abs(ky) <= cutoff
		}
	}

	// zero mode of vorticity is always zero; 1.0 keeps the Poisson solve finite
	g.Lap[0] = 1.0

	return g, nil
}

// Wavenumbers returns 0..n/2-1 followed by -n/2..-1.
func Wavenumbers(n int) []int {
	k := make([]int, n)
	half := n / 2
	for i := 0; i < half; i++ {
		k[i] = i
	}
	for i := half; i < n; i++ {
		k[i] = i - n
	}
	return k
}

// Coordinates returns the n uniformly spaced grid points in [0, 1).
func Coordinates(n int) []float64 {
	x := make([]float64, n)
	if n == 1 {
		return x
	}
	floats.Span(x, 0, 1-1/float64(n))
	return x
}

// Mirror returns the flat index of the mode (-kx, -ky).
func (g *Grid) Mirror(idx int) int {
	i, j := idx/g.N, idx%g.N
	return ((g.N-i)%g.N)*g.N + (g.N-j)%g.N
}
