// Package field holds the batched 2D containers the solver moves between
// physical and Fourier space.
//
//   - [Field]: batch × N × N real values (vorticity, forcing)
//   - [Spectrum]: batch × N × N complex Fourier coefficients
//
// Both store samples contiguously in row-major order: element (b, i, j)
// lives at b*N*N + i*N + j, where i indexes the x axis and j the y axis.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type Field struct {
	Batch int
	N     int
	Data  []float64
}

func New(batch, n int) Field {
	return Field{Batch: batch, N: n, Data: make([]float64, batch*n*n)}
}

func (f Field) Size() int { return f.N * f.N }

func (f Field) At(b, i, j int) float64 { return f.Data[b*f.N*f.N+i*f.N+j] }

func (f Field) Set(b, i, j int, v float64) { f.Data[b*f.N*f.N+i*f.N+j] = v }

// Sample returns a view of sample b; writes go through to f.
func (f Field) Sample(b int) []float64 {
	sz := f.Size()
	return f.Data[b*sz : (b+1)*sz]
}

// Slice returns sample b as a freshly allocated [i][j] grid.
func (f Field) Slice(b int) [][]float64 {
	out := make([][]float64, f.N)
	s := f.Sample(b)
	for i := range out {
		out[i] = make([]float64, f.N)
		copy(out[i], s[i*f.N:(i+1)*f.N])
	}
	return out
}

// Select returns a new Field holding only sample b.
func (f Field) Select(b int) Field {
	out := New(1, f.N)
	copy(out.Data, f.Sample(b))
	return out
}

func (f Field) Clone() Field {
	c := Field{Batch: f.Batch, N: f.N, Data: make([]float64, len(f.Data))}
	copy(c.Data, f.Data)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (f Field) Norm() float64 {
	return floats.Norm(f.Data, 2)
}

func (f Field) MaxAbs() float64 {
	m := 0.0
	for _, v := range f.Data {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (f Field) Scale(factor float64) Field {
	c := f.Clone()
	floats.Scale(factor, c.Data)
	return c
}

func (f Field) Add(other Field) Field {
	c := f.Clone()
	floats.Add(c.Data, other.Data)
	return c
}

func (f Field) Sub(other Field) Field {
	c := f.Clone()
	floats.Sub(c.Data, other.Data)
	return c
}

// Concat stacks fields of equal N along the batch axis.
func Concat(fields ...Field) (Field, error) {
	if len(fields) == 0 {
		return Field{}, fmt.Errorf("field: nothing to concatenate")
	}
	n := fields[0].N
	batch := 0
	for _, f := range fields {
		if f.N != n {
			return Field{}, fmt.Errorf("field: grid size %d does not match %d", f.N, n)
		}
		batch += f.Batch
	}
	out := New(batch, n)
	off := 0
	for _, f := range fields {
		copy(out.Data[off:], f.Data)
		off += len(f.Data)
	}
	return out, nil
}
