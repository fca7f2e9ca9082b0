package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/nssim/internal/field"
)

// Transform is the 2D DFT pair on an N×N sample. Inverse carries the
// 1/N² normalisation so Inverse(Forward(x)) == x.
type Transform struct {
	n int
}

func NewTransform(n int) *Transform {
	return &Transform{n: n}
}

func (t *Transform) N() int { return t.n }

// Forward transforms one real sample (length N²) into dst.
func (t *Transform) Forward(dst []complex128, src []float64) {
	rows := make([][]float64, t.n)
	for i := range rows {
		rows[i] = src[i*t.n : (i+1)*t.n]
	}
	t.store(dst, fft.FFT2Real(rows))
}

// Inverse writes the real part of the inverse transform of src into dst.
func (t *Transform) Inverse(dst []float64, src []complex128) {
	out := fft.IFFT2(t.view(src))
	for i, row := range out {
		for j, v := range row {
			dst[i*t.n+j] = real(v)
		}
	}
}

// InverseComplex keeps both parts of the inverse transform.
func (t *Transform) InverseComplex(dst, src []complex128) {
	t.store(dst, fft.IFFT2(t.view(src)))
}

func (t *Transform) ForwardField(f field.Field) (field.Spectrum, error) {
	if f.N != t.n {
		return field.Spectrum{}, fmt.Errorf("spectral: field grid %d does not match transform %d", f.N, t.n)
	}
	s := field.NewSpectrum(f.Batch, f.N)
	for b := 0; b < f.Batch; b++ {
		t.Forward(s.Sample(b), f.Sample(b))
	}
	return s, nil
}

func (t *Transform) InverseField(s field.Spectrum) (field.Field, error) {
	if s.N != t.n {
		return field.Field{}, fmt.Errorf("spectral: spectrum grid %d does not match transform %d", s.N, t.n)
	}
	f := field.New(s.Batch, s.N)
	for b := 0; b < s.Batch; b++ {
		t.Inverse(f.Sample(b), s.Sample(b))
	}
	return f, nil
}

// view exposes a flat sample as rows without copying.
func (t *Transform) view(src []complex128) [][]complex128 {
	rows := make([][]complex128, t.n)
	for i := range rows {
		rows[i] = src[i*t.n : (i+1)*t.n]
	}
	return rows
}

func (t *Transform) store(dst []complex128, rows [][]complex128) {
	for i, row := range rows {
		copy(dst[i*t.n:(i+1)*t.n], row)
	}
}
