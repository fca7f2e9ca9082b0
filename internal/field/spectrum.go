package field

import (
	"math"
	"math/cmplx"
)

type Spectrum struct {
	Batch int
	N     int
	Data  []complex128
}

func NewSpectrum(batch, n int) Spectrum {
	return Spectrum{Batch: batch, N: n, Data: make([]complex128, batch*n*n)}
}

func (s Spectrum) Size() int { return s.N * s.N }

func (s Spectrum) At(b, i, j int) complex128 { return s.Data[b*s.N*s.N+i*s.N+j] }

func (s Spectrum) Set(b, i, j int, v complex128) { s.Data[b*s.N*s.N+i*s.N+j] = v }

func (s Spectrum) Sample(b int) []complex128 {
	sz := s.Size()
	return s.Data[b*sz : (b+1)*sz]
}

// MaxAbsDiff is the largest elementwise modulus of s - other.
func (s Spectrum) MaxAbsDiff(other Spectrum) float64 {
	m := 0.0
	for i, v := range s.Data {
		m = math.Max(m, cmplx.Abs(v-other.Data[i]))
	}
	return m
}
