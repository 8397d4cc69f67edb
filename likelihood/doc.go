// Package likelihood evaluates the negative log-likelihood of the
// random-effects model θᵢ ~ Normal(0, V + Sᵢ) and its gradient with respect
// to the reduced (upper-triangle) parameterization of V.
//
// For Σᵢ = Sᵢ + V and aᵢ = Σᵢ⁻¹θᵢ:
//
//	log L  = Σᵢ [ −(d/2)·ln 2π − ½·ln det Σᵢ − ½·θᵢᵀ aᵢ ]
//	∂logL/∂V = Σᵢ [ −½·Σᵢ⁻¹ + ½·aᵢ aᵢᵀ ]
//
// The dense derivative is folded into the reduced vector with
// symparam.FoldGradient, then both value and gradient are negated so that a
// minimiser can consume them directly.
//
// Every Σᵢ goes through a Cholesky factorization. A Σᵢ that cannot be
// inverted fails with core.ErrNumericalSingularity; one that is invertible but
// indefinite fails with core.ErrNotPositiveDefinite. No fallback value is ever
// substituted.
package likelihood
