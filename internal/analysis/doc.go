// Package analysis provides diagnostics computed from recorded vorticity.
//
//   - [EnergySpectrum]: shell-averaged kinetic energy spectrum E(k)
//   - [PowerSpectrum]: spectrum of a scalar time series (e.g. a probe)
//   - [SeparationRate]: growth rate of a small perturbation, the largest
//     Lyapunov exponent estimate for the flow
//
// # Chaos Detection
//
// A positive separation rate indicates sensitive dependence on initial
// conditions:
//
//	rate, _ := analysis.SeparationRate(ctx, w0, f, cfg, 1e-6)
//	if rate > 0 {
//	    // trajectories diverge
//	}
package analysis
