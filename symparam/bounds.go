// SPDX-License-Identifier: MIT

package symparam

import "math"

// Bound is a closed box constraint Lower ≤ x ≤ Upper on one reduced
// parameter. Infinite ends mean "unbounded on that side".
type Bound struct {
	Lower float64
	Upper float64
}

// Bounds returns m·(m+1)/2 bounds aligned with the Encode traversal:
// diagonal positions get [0, +Inf) (variances) and off-diagonal positions get
// (−Inf, +Inf) (covariances).
//
// Complexity: O(m²).
func Bounds(m int) []Bound {
	out := make([]Bound, 0, NumParams(m))
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			if i == j {
				out = append(out, Bound{Lower: 0, Upper: math.Inf(1)})
			} else {
				out = append(out, Bound{Lower: math.Inf(-1), Upper: math.Inf(1)})
			}
		}
	}

	return out
}

// DiagonalIndices returns the reduced-vector positions of the m diagonal
// entries, in row order.
func DiagonalIndices(m int) []int {
	out := make([]int, m)
	k := 0
	for i := 0; i < m; i++ {
		out[i] = k
		k += m - i // row i of the upper triangle has m−i entries
	}

	return out
}

// IsDiagonalIndex reports whether reduced position k maps to a diagonal entry
// of an m×m matrix.
func IsDiagonalIndex(k, m int) bool {
	for _, idx := range DiagonalIndices(m) {
		if idx == k {
			return true
		}
	}

	return false
}

// SplitBounds separates bounds into the lower and upper slices expected by
// box-constrained minimisers.
func SplitBounds(b []Bound) (lower, upper []float64) {
	lower = make([]float64, len(b))
	upper = make([]float64, len(b))
	for i, bd := range b {
		lower[i], upper[i] = bd.Lower, bd.Upper
	}

	return lower, upper
}
