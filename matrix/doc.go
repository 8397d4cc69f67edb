// SPDX-License-Identifier: MIT

// Package matrix holds the guard and comparison helpers shared by the
// estimation packages. Every helper works on gonum mat.Matrix values.
//
// Validators (fail-fast, allocation-free):
//
//   - ValidateNotNil, ValidateSquare, ValidateShape, ValidateSameShape,
//     ValidateVecLen: structure.
//   - ValidateFinite: no NaN or ±Inf.
//   - ValidateSymmetric: |A[i,j] − A[j,i]| ≤ tol·(1 + max|A|).
//
// Comparison and conversion:
//
//   - AllClose: element-wise |a−b| ≤ atol + rtol·|b|.
//   - FrobeniusDistance: ‖a − b‖_F.
//   - SymCopy: symmetric copy built from the upper triangle.
//
// Errors are the sentinels in errors.go wrapped with the validator name;
// match them with errors.Is.
package matrix
