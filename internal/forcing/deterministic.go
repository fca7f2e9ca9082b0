package forcing

import (
	"math"

	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/spectral"
)

// Periodic returns amp·(sin(2π(x+y)) + cos(2π(x+y))) as a single sample.
func Periodic(n int, amp float64) field.Field {
	return sampled(n, func(x, y float64) float64 {
		return amp * (math.Sin(2*math.Pi*(x+y)) + math.Cos(2*math.Pi*(x+y)))
	})
}

// Kolmogorov returns the shear forcing amp·sin(2π·k·y).
func Kolmogorov(n int, amp float64, k int) field.Field {
	return sampled(n, func(x, y float64) float64 {
		return amp * math.Sin(2*math.Pi*float64(k)*y)
	})
}

func sampled(n int, fn func(x, y float64) float64) field.Field {
	f := field.New(1, n)
	xs := spectral.Coordinates(n)
	for i, x := range xs {
		for j, y := range xs {
			f.Set(0, i, j, fn(x, y))
		}
	}
	return f
}
