// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used by the validators
// and comparison helpers. All helpers return these sentinels wrapped with a
// validator tag; callers match them via errors.Is.

package matrix

import "github.com/cockroachdb/errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Higher layers (core) re-export the sentinels they
// surface so callers never need to import this package just to match errors.

var (
	// ErrNilMatrix indicates that a nil matrix (or vector) argument was used.
	ErrNilMatrix = errors.New("matrix: nil argument")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// or a matrix that was required to be square but is not.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated symmetry
	// within the configured tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required (ingestion, tolerances).
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")
)
