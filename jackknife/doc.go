// SPDX-License-Identifier: MIT

// Package jackknife estimates standard errors of the fitted covariance V by
// delete-a-block resampling.
//
// 🚀 Procedure
//
//	For every start index s = 0, 1, …, N−1 the half-open window
//	[s, min(s+b, N)) is removed from the observation set and V is re-fitted
//	with estimate.Solve on what remains. Windows slide by one and overlap, so
//	there are exactly N replicates for every block size b (near the tail the
//	window is shorter than b).
//
//	With mean the elementwise average of the replicates:
//
//	  correction = (N − b) / (b · C(N, b))
//	  se         = sqrt(correction · Σ (replicate − mean)²)
//
// ✨ Execution
//
//   - Replicates are independent and run on a bounded pool of goroutines
//     (errgroup); each writes into its own slot, and the reduction is
//     sequential in index order, so results do not depend on scheduling.
//   - The first failing replicate (for example a singular Sᵢ+V) aborts the
//     whole run; outstanding replicates are not started.
//   - Cancellation is checked between replicates, not inside an optimisation.
package jackknife
