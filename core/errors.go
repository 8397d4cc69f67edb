// SPDX-License-Identifier: MIT
// Package core: sentinel error set shared by every estimation package.
// All algorithms return these sentinels (optionally wrapped with context via
// errors.Wrapf) and tests match them with errors.Is. No algorithm panics on
// user-triggered error conditions; panics are reserved for option
// constructors receiving nonsensical values (programmer error).

package core

import (
	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/varcomp/matrix"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "varcomp: ..." so that errors surfacing from
// nested packages (likelihood → estimate → jackknife) stay greppable.
//
// ERROR PRIORITY (enforced by NewObservationSet):
// missing effects -> empty set -> dimension mismatch -> NaN/Inf -> asymmetry.

var (
	// ErrNumericalSingularity is returned when S_i+V cannot be inverted during
	// likelihood evaluation. It is fatal for the optimisation that raised it.
	ErrNumericalSingularity = errors.New("varcomp: S_i+V is numerically singular")

	// ErrNotPositiveDefinite is returned when S_i+V is invertible but not
	// positive definite, so the normal density is undefined at that point.
	ErrNotPositiveDefinite = errors.New("varcomp: covariance is not positive definite")

	// ErrEmptyObservations is returned when an observation set has no entries.
	ErrEmptyObservations = errors.New("varcomp: observation set is empty")

	// ErrMissingEffects is returned when no effect vectors were supplied.
	ErrMissingEffects = errors.New("varcomp: effect vectors (theta) are required")

	// ErrBadBlockSize is returned when a jackknife block size is outside [1, N].
	ErrBadBlockSize = errors.New("varcomp: jackknife block size out of range")
)

// Sentinels shared with the matrix validators. They alias the matrix package
// values so errors.Is matches regardless of which layer raised them.
var (
	// ErrDimensionMismatch is returned when a noise covariance is not square,
	// when dimensions disagree across observations, or when an effect vector or
	// parameter vector does not match the observation dimension.
	ErrDimensionMismatch = matrix.ErrDimensionMismatch

	// ErrAsymmetry is returned when a noise covariance is not symmetric.
	ErrAsymmetry = matrix.ErrAsymmetry

	// ErrNaNInf is returned when an input carries NaN or ±Inf values.
	ErrNaNInf = matrix.ErrNaNInf
)
