// Package spectral implements the Fourier-space machinery for fields on
// the doubly periodic unit torus.
//
//   - [Grid]: signed wavenumbers in FFT order, the negative Laplacian
//     multiplier and the two-thirds dealiasing mask
//   - [Transform]: forward/inverse 2D discrete Fourier transform pair
//   - derivative, Poisson and masking operators on coefficient arrays
//
// Wavenumbers count cycles per unit length, so ∂/∂x corresponds to
// multiplication by i·2π·kx and -∇² to 4π²(kx²+ky²).
package spectral
