package spectral

import (
	"math"
	"testing"

	"github.com/san-kum/nssim/internal/field"
)

func sampleField(n int, fn func(x, y float64) float64) []float64 {
	xs := Coordinates(n)
	out := make([]float64, n*n)
	for i, x := range xs {
		for j, y := range xs {
			out[i*n+j] = fn(x, y)
		}
	}
	return out
}

func TestTransformRoundTrip(t *testing.T) {
	n := 16
	tr := NewTransform(n)
	src := sampleField(n, func(x, y float64) float64 {
		return math.Sin(2*math.Pi*x)*math.Cos(4*math.Pi*y) + 0.3*x*y
	})

	spec := make([]complex128, n*n)
	tr.Forward(spec, src)

	back := make([]float64, n*n)
	tr.Inverse(back, spec)

	for i := range src {
		if math.Abs(back[i]-src[i]) > 1e-12 {
			t.Fatalf("round trip mismatch at %d: %v vs %v", i, back[i], src[i])
		}
	}
}

func TestTransformModePlacement(t *testing.T) {
	n := 8
	g, _ := NewGrid(n)
	tr := NewTransform(n)

	// cos(2π·x) puts N²/2 on (±1, 0)
	src := sampleField(n, func(x, y float64) float64 { return math.Cos(2 * math.Pi * x) })
	spec := make([]complex128, n*n)
	tr.Forward(spec, src)

	for idx, v := range spec {
		want := 0.0
		if g.Ky[idx] == 0 && math.Abs(g.Kx[idx]) == 1 {
			want = float64(n*n) / 2
		}
		if math.Abs(real(v)-want) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
			t.Errorf("mode (%v,%v) = %v, want %v", g.Kx[idx], g.Ky[idx], v, want)
		}
	}
}

func TestSpectralDerivatives(t *testing.T) {
	n := 16
	g, _ := NewGrid(n)
	tr := NewTransform(n)

	w := sampleField(n, func(x, y float64) float64 {
		return math.Sin(2*math.Pi*x) * math.Sin(4*math.Pi*y)
	})
	wantX := sampleField(n, func(x, y float64) float64 {
		return 2 * math.Pi * math.Cos(2*math.Pi*x) * math.Sin(4*math.Pi*y)
	})
	wantY := sampleField(n, func(x, y float64) float64 {
		return 4 * math.Pi * math.Sin(2*math.Pi*x) * math.Cos(4*math.Pi*y)
	})

	wh := make([]complex128, n*n)
	tr.Forward(wh, w)

	tests := []struct {
		name string
		op   func(dst, src []complex128)
		want []float64
	}{
		{"dx", g.DX, wantX},
		{"dy", g.DY, wantY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dh := make([]complex128, n*n)
			tt.op(dh, wh)
			got := make([]float64, n*n)
			tr.Inverse(got, dh)
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("index %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVelocityFromStreamFunction(t *testing.T) {
	n := 16
	g, _ := NewGrid(n)
	tr := NewTransform(n)

	// w = 8π² sin(2πx)sin(2πy) has ψ = sin(2πx)sin(2πy)
	w := sampleField(n, func(x, y float64) float64 {
		return 8 * math.Pi * math.Pi * math.Sin(2*math.Pi*x) * math.Sin(2*math.Pi*y)
	})
	wantU := sampleField(n, func(x, y float64) float64 {
		return 2 * math.Pi * math.Sin(2*math.Pi*x) * math.Cos(2*math.Pi*y)
	})
	wantV := sampleField(n, func(x, y float64) float64 {
		return -2 * math.Pi * math.Cos(2*math.Pi*x) * math.Sin(2*math.Pi*y)
	})

	wh := make([]complex128, n*n)
	tr.Forward(wh, w)
	psi := make([]complex128, n*n)
	g.InvLap(psi, wh)

	uh := make([]complex128, n*n)
	vh := make([]complex128, n*n)
	g.Velocity(uh, vh, psi)

	u := make([]float64, n*n)
	v := make([]float64, n*n)
	tr.Inverse(u, uh)
	tr.Inverse(v, vh)

	for i := range u {
		if math.Abs(u[i]-wantU[i]) > 1e-9 || math.Abs(v[i]-wantV[i]) > 1e-9 {
			t.Fatalf("index %d: got (%v,%v), want (%v,%v)", i, u[i], v[i], wantU[i], wantV[i])
		}
	}
}

func TestTruncate(t *testing.T) {
	g, _ := NewGrid(8)
	s := make([]complex128, 64)
	for i := range s {
		s[i] = complex(1, 1)
	}
	g.Truncate(s)

	for i, v := range s {
		if g.Dealias[i] && v != complex(1, 1) {
			t.Errorf("retained mode %d was modified: %v", i, v)
		}
		if !g.Dealias[i] && v != 0 {
			t.Errorf("truncated mode %d not zeroed: %v", i, v)
		}
	}
}

func TestTransformFieldShapeCheck(t *testing.T) {
	tr := NewTransform(8)
	if _, err := tr.ForwardField(field.New(1, 4)); err == nil {
		t.Error("expected error for mismatched grid")
	}
	if _, err := tr.InverseField(field.NewSpectrum(1, 16)); err == nil {
		t.Error("expected error for mismatched grid")
	}

	f := field.New(2, 8)
	f.Set(1, 3, 2, 1.5)
	s, err := tr.ForwardField(f)
	if err != nil {
		t.Fatalf("ForwardField: %v", err)
	}
	back, err := tr.InverseField(s)
	if err != nil {
		t.Fatalf("InverseField: %v", err)
	}
	if math.Abs(back.At(1, 3, 2)-1.5) > 1e-12 || math.Abs(back.At(0, 3, 2)) > 1e-12 {
		t.Errorf("batch round trip failed: %v", back.Data)
	}
}
