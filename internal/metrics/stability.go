package metrics

import (
	"math"

	"github.com/san-kum/nssim/internal/field"
)

// Stability is the fraction of record points whose vorticity stayed finite
// and below threshold in magnitude.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w field.Field, t float64) {
	s.samples++
	for _, val := range w.Data {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
