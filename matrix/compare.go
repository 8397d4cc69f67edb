// SPDX-License-Identifier: MIT
// Package matrix: comparison and conversion helpers over gonum matrices.

package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// Time: O(r*c). Space: O(1). Deterministic.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol| (negative values are normalized).
func AllClose(a, b mat.Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, validatorErrorf("AllClose", ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	if err := ValidateNotNil(a); err != nil {
		return false, validatorErrorf("AllClose", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, validatorErrorf("AllClose", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, validatorErrorf("AllClose", err)
	}

	r, c := a.Dims()
	var av, bv float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			av, bv = a.At(i, j), b.At(i, j)
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil // early-exit on first violation
			}
		}
	}

	return true, nil
}

// FrobeniusDistance returns ‖a − b‖_F for identically shaped a and b.
// Complexity: O(r*c).
func FrobeniusDistance(a, b mat.Matrix) (float64, error) {
	if err := ValidateNotNil(a); err != nil {
		return 0, validatorErrorf("FrobeniusDistance", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return 0, validatorErrorf("FrobeniusDistance", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return 0, validatorErrorf("FrobeniusDistance", err)
	}

	var diff mat.Dense
	diff.Sub(a, b)

	return mat.Norm(&diff, 2), nil
}

// SymCopy returns a symmetric copy of the square matrix m built from its
// upper triangle. Callers validate symmetry beforehand when it matters.
// Complexity: O(n²).
func SymCopy(m mat.Matrix) (*mat.SymDense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, validatorErrorf("SymCopy", err)
	}
	n, _ := m.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, m.At(i, j))
		}
	}

	return out, nil
}
