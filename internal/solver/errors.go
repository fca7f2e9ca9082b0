package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates batch or grid sizes of w0, forcing and the
	// forcing source disagree.
	ErrShapeMismatch = errors.New("solver: shape mismatch")

	// ErrConfig indicates inconsistent run parameters.
	ErrConfig = errors.New("solver: invalid configuration")

	// ErrUnstable indicates a recorded snapshot holds NaN or Inf.
	ErrUnstable = errors.New("solver: simulation unstable (non-finite vorticity)")
)

// SimulationError wraps an error with the step at which it surfaced.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
