package field

import (
	"math"
	"testing"
)

func TestField_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		valid bool
	}{
		{"zeros", []float64{0, 0, 0, 0}, true},
		{"normal", []float64{1, 2, 3, 4}, true},
		{"with NaN", []float64{1, math.NaN(), 0, 0}, false},
		{"with +Inf", []float64{1, math.Inf(1), 0, 0}, false},
		{"with -Inf", []float64{1, math.Inf(-1), 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Field{Batch: 1, N: 2, Data: tt.data}
			if got := f.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestField_Norm(t *testing.T) {
	tests := []struct {
		data     []float64
		expected float64
	}{
		{[]float64{3, 4, 0, 0}, 5.0},
		{[]float64{1, 0, 0, 0}, 1.0},
		{[]float64{0, 0, 0, 0}, 0.0},
		{[]float64{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		f := Field{Batch: 1, N: 2, Data: tt.data}
		if got := f.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.data, got, tt.expected)
		}
	}
}

func TestField_Indexing(t *testing.T) {
	f := New(2, 3)
	f.Set(1, 2, 0, 7)

	if f.At(1, 2, 0) != 7 {
		t.Errorf("At(1,2,0) = %v, want 7", f.At(1, 2, 0))
	}
	if f.Data[9+6] != 7 {
		t.Errorf("unexpected flat layout: %v", f.Data)
	}
	if f.Sample(1)[6] != 7 {
		t.Error("Sample view does not see the write")
	}

	grid := f.Slice(1)
	grid[2][0] = 99
	if f.At(1, 2, 0) != 7 {
		t.Error("Slice did not copy")
	}
}

func TestField_Arithmetic(t *testing.T) {
	a := Field{Batch: 1, N: 2, Data: []float64{1, 2, 3, 4}}
	b := Field{Batch: 1, N: 2, Data: []float64{4, 5, 6, 7}}

	sum := a.Add(b)
	if sum.Data[0] != 5 || sum.Data[3] != 11 {
		t.Errorf("Add failed: got %v", sum.Data)
	}

	diff := b.Sub(a)
	for _, v := range diff.Data {
		if v != 3 {
			t.Errorf("Sub failed: got %v", diff.Data)
			break
		}
	}

	scaled := a.Scale(2)
	if scaled.Data[1] != 4 || a.Data[1] != 2 {
		t.Errorf("Scale failed: got %v (source %v)", scaled.Data, a.Data)
	}
}

func TestConcat(t *testing.T) {
	f := Field{Batch: 2, N: 2, Data: []float64{1, 2, 3, 4, 5, 6, 7, 8}}

	joined, err := Concat(f.Select(1), f.Select(0))
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	if joined.At(0, 0, 0) != 5 || joined.At(1, 0, 0) != 1 {
		t.Errorf("Concat order wrong: %v", joined.Data)
	}

	if _, err := Concat(f, New(1, 4)); err == nil {
		t.Error("expected error for mismatched grid sizes")
	}
}

func TestSpectrum_Indexing(t *testing.T) {
	s := NewSpectrum(2, 2)
	s.Set(1, 0, 1, 3i)
	if s.At(1, 0, 1) != 3i || s.Sample(1)[1] != 3i {
		t.Errorf("unexpected layout: %v", s.Data)
	}

	other := NewSpectrum(2, 2)
	if d := s.MaxAbsDiff(other); d != 3 {
		t.Errorf("MaxAbsDiff = %v, want 3", d)
	}
}

func TestPool(t *testing.T) {
	cpool := NewPool[complex128](4)
	c := cpool.Get()
	if len(c) != 4 {
		t.Errorf("Pool returned wrong size: %d", len(c))
	}
	cpool.Put(c)

	rpool := NewPool[float64](3)
	r := rpool.Get()
	if len(r) != 3 {
		t.Errorf("Pool returned wrong size: %d", len(r))
	}
	rpool.Put(r)

	// foreign lengths are dropped rather than recycled
	rpool.Put(make([]float64, 5))
	if got := rpool.Get(); len(got) != 3 {
		t.Errorf("Pool handed out a %d-element buffer", len(got))
	}
}
