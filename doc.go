// Package varcomp estimates the covariance V shared by N noisy effect
// vectors under the random-effects model
//
//	θᵢ ~ Normal(0, V + Sᵢ),   i = 1..N,
//
// where every Sᵢ is a known, per-observation sampling covariance.
//
// 🚀 What is varcomp?
//
//	A small, pure-Go toolkit that brings together:
//		• Observation sets: validated, immutable (θᵢ, Sᵢ) collections
//		• A reduced upper-triangle codec for symmetric V with box bounds
//		• The Gaussian log-likelihood and its analytic gradient
//		• A bounded limited-memory quasi-Newton minimiser
//		• Maximum-likelihood fitting with a zero-matrix fallback guess
//		• Delete-b jackknife standard errors, fitted concurrently
//		• A seeded simulator for synthetic datasets
//
// Under the hood, everything is organized into subpackages:
//
//	core/       — ObservationSet and the shared sentinel errors
//	matrix/     — shape, finiteness and symmetry validators; comparisons
//	symparam/   — Encode / Decode / FoldGradient / Bounds
//	likelihood/ — −log L and ∂(−log L)/∂params via Cholesky
//	lbfgsb/     — projected L-BFGS with lower/upper bounds
//	estimate/   — Solve: the end-to-end fit of V
//	jackknife/  — Run: block-deletion replicates and standard errors
//	simulate/   — Effects / Dataset: draws from the model
//	logging/    — zap logger construction with verbosity levels
//	config/     — viper-backed configuration for the CLI
//	cmd/vcest/  — the command-line front end (fit, jackknife, simulate)
//
// Quick start:
//
//	obs, _ := core.FromSlices(theta, s)
//	res, err := estimate.Solve(obs)
//	if err != nil { ... }
//	fmt.Println(mat.Formatted(res.Estimate), res.Success)
//
//	se, _ := jackknife.Run(ctx, obs, jackknife.WithBlockSize(10))
//	fmt.Println(mat.Formatted(se.StandardError))
package varcomp
