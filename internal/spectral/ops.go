package spectral

import "math"

const twoPi = 2 * math.Pi

// InvLap solves -∇²ψ = w mode by mode.
func (g *Grid) InvLap(dst, src []complex128) {
	for i, v := range src {
		l := g.Lap[i]
		dst[i] = complex(real(v)/l, imag(v)/l)
	}
}

// DX writes the x-derivative coefficients i·2π·kx·src into dst.
func (g *Grid) DX(dst, src []complex128) {
	derive(dst, src, g.Kx, 1)
}

// DY writes the y-derivative coefficients i·2π·ky·src into dst.
func (g *Grid) DY(dst, src []complex128) {
	derive(dst, src, g.Ky, 1)
}

// Velocity writes û = ∂ψ/∂y and v̂ = -∂ψ/∂x for stream function psi.
func (g *Grid) Velocity(u, v, psi []complex128) {
	derive(u, psi, g.Ky, 1)
	derive(v, psi, g.Kx, -1)
}

// Truncate zeroes every coefficient outside the dealiasing mask.
func (g *Grid) Truncate(s []complex128) {
	for i, keep := range g.Dealias {
		if !keep {
			s[i] = 0
		}
	}
}

func derive(dst, src []complex128, k []float64, sign float64) {
	for i, v := range src {
		c := sign * twoPi * k[i]
		dst[i] = complex(-c*imag(v), c*real(v))
	}
}
