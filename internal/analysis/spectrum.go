package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/nssim/internal/spectral"
)

// EnergySpectrum bins ½|û|² of one vorticity sample into integer shells
// k = round(|k|), k = 0..N/2. The shells sum to the kinetic energy of the
// modes with |k| ≤ N/2.
func EnergySpectrum(g *spectral.Grid, tr *spectral.Transform, w []float64) []float64 {
	wh := make([]complex128, len(w))
	tr.Forward(wh, w)

	shells := make([]float64, g.KMax+1)
	n4 := float64(len(w)) * float64(len(w))

	for i := 1; i < len(wh); i++ {
		k := int(math.Round(math.Hypot(g.Kx[i], g.Ky[i])))
		if k > g.KMax {
			continue
		}
		re, im := real(wh[i]), imag(wh[i])
		shells[k] += 0.5 * (re*re + im*im) / g.Lap[i] / n4
	}

	return shells
}

// PowerSpectrum returns |X_f| for the first half of the frequencies of a
// real series.
func PowerSpectrum(data []float64) []float64 {
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-zero frequency of a series
// sampled every dt, in cycles per unit time.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}

	return float64(best) / (float64(len(data)) * dt)
}
