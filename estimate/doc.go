// SPDX-License-Identifier: MIT

// Package estimate is the maximum-likelihood driver: it fits the shared
// random-effects covariance V of the model θᵢ ~ N(0, V + Sᵢ) to an
// observation set.
//
// 🚀 What is Solve?
//
//	Solve encodes an initial guess into the reduced upper-triangle vector,
//	asks symparam for the variance bounds (diagonal ≥ 0, covariances free),
//	and minimises the negative log-likelihood from package likelihood with the
//	bounded quasi-Newton minimiser of package lbfgsb. The optimum is decoded
//	back into a *mat.SymDense.
//
// ✨ Key behaviour
//
//   - A missing initial guess means the zero matrix.
//   - A guess of the wrong shape (or with NaN/±Inf entries) is replaced by the
//     zero matrix; a warning is logged and Result.InitialGuessReplaced is set.
//   - Trial points where some Sᵢ+V is invertible but indefinite are rejected by
//     the line search; a singular Sᵢ+V aborts the fit with
//     core.ErrNumericalSingularity.
//   - Non-convergence is NOT an error. Check Result.Success (and Status,
//     Message) before trusting Result.Estimate.
//
// ⚙️ Options
//
//	WithInitialGuess, WithLogger, WithVerbose, WithMaxIterations, WithMemory,
//	WithGradientTolerance, WithFactr, WithMaxLineSearch.
//
// Solve is safe for concurrent use on distinct or shared observation sets;
// every call owns its evaluator and optimiser state.
package estimate
