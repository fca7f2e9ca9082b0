package metrics

import (
	"math"

	"github.com/san-kum/nssim/internal/field"
)

// PeakVorticity is the largest |w| seen at any record point.
type PeakVorticity struct {
	name string
	peak float64
}

func NewPeakVorticity() *PeakVorticity {
	return &PeakVorticity{name: "peak_vorticity"}
}

func (p *PeakVorticity) Name() string { return p.name }

func (p *PeakVorticity) Observe(w field.Field, t float64) {
	p.peak = math.Max(p.peak, w.MaxAbs())
}

func (p *PeakVorticity) Value() float64 { return p.peak }

func (p *PeakVorticity) Reset() { p.peak = 0 }
