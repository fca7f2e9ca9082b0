// Package solver integrates the 2D incompressible Navier–Stokes equations
// in vorticity form on the unit torus with a pseudo-spectral method.
//
// Each step solves the Poisson equation for the stream function, evaluates
// the advection term u·∇w in physical space with two-thirds dealiasing, and
// advances every Fourier mode with a Crank–Nicolson update that treats
// diffusion implicitly and advection plus forcing explicitly:
//
//	ŵ ← (-Δt·F̂ + Δt·f̂ + Δt·f̂_sto + (1 - ½Δtν|k|²)ŵ) / (1 + ½Δtν|k|²)
//
// The main types are:
//
//   - [Solver]: runs a batch of initial fields to a [Result]
//   - [ForcingSource]: supplies per-step stochastic increments
//   - [Ensemble]: runs independent batches concurrently
//
// # Example
//
//	s := solver.New(solver.WithSource(forcing.NewWiener(n, 0.05, seed)))
//	res, err := s.Simulate(ctx, w0, f, solver.Config{
//		Viscosity: 1e-3, Duration: 50, Dt: 1e-4, RecordSteps: 200,
//	})
//
// # Thread Safety
//
// A Solver must not run two simulations at once: its source, metrics and
// observers are stateful. Use [Ensemble] to run batches in parallel.
package solver
