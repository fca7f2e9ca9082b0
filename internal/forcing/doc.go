// Package forcing provides the random and deterministic inputs of a run:
// Q-Wiener increments for stochastic forcing, Gaussian random field
// initial vorticity, and fixed physical-space forcing fields.
package forcing
