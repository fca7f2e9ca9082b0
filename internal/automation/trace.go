package automation

import (
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/metrics"
)

// energyTrace follows the batch-mean energy across record points. The
// solver stops before notifying observers of a non-finite snapshot, so the
// last good values survive an unstable run.
type energyTrace struct {
	energy     *metrics.Energy
	final, max float64
}

func newEnergyTrace() *energyTrace { return &energyTrace{} }

func (e *energyTrace) OnRecord(step int, w field.Field, t float64) {
	if e.energy == nil {
		energy, err := metrics.NewEnergy(w.N)
		if err != nil {
			return
		}
		e.energy = energy
	}
	e.energy.Observe(w, t)
	e.final = e.energy.Value()
	if e.final > e.max {
		e.max = e.final
	}
}
