// SPDX-License-Identifier: MIT

// Package simulate draws synthetic observation sets from the random-effects
// model, for tests, examples and the `vcest simulate` command:
//
//	θᵢ    ~ N(0, V)       (true effect)
//	θ̂ᵢ   ~ N(θᵢ, Sᵢ)     (observed effect)
//
// Sampling is deterministic for a given seed (seed 0 selects a fixed default
// seed). Covariances only need to be positive SEMI-definite: a singular but
// PSD matrix (including the zero matrix) is sampled through its eigen
// decomposition.
package simulate
