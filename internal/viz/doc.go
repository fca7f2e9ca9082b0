// Package viz provides a live terminal view of a running simulation.
//
// [Model] is a Bubble Tea model fed by record-point messages. [Feed]
// adapts a running program into a solver observer, and [Run] wires an
// experiment to a program end to end:
//
//   - vorticity of the first sample drawn on a Braille [Canvas]
//   - energy history plotted with asciigraph
//   - progress, enstrophy and peak vorticity
//
// # Key Bindings
//
//	Q / Ctrl+C - Stop the run and quit
//	Tab        - Cycle the displayed sample
//	+ / -      - Raise or lower the contour level
package viz
