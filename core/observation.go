// SPDX-License-Identifier: MIT

package core

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/varcomp/matrix"
)

// symTol is the relative tolerance used when checking that every S_i is
// symmetric. It is independent from any optimiser tolerance.
const symTol = 1e-9

// Observation is one locus: an observed effect vector θᵢ and its known
// sampling covariance Sᵢ. Both are owned by the ObservationSet and must be
// treated as read-only.
type Observation struct {
	// Theta is the observed effect vector (length d).
	Theta *mat.VecDense

	// S is the known d×d noise covariance of Theta.
	S *mat.SymDense
}

// ObservationSet is an ordered, immutable sequence of observations sharing a
// single dimension d. It is safe for concurrent readers.
type ObservationSet struct {
	dim int
	obs []Observation
}

// NewObservationSet validates and copies theta (N×d, row i is θᵢ) and the N
// noise covariances s into a new ObservationSet.
//
// Validation order (fail-fast, before any numeric work):
//  1. theta is nil                             → ErrMissingEffects.
//  2. s is empty                               → ErrEmptyObservations.
//  3. some Sᵢ is nil, not square or of another
//     side than S₀; theta is not len(s)×d      → ErrDimensionMismatch.
//  4. NaN/±Inf anywhere                        → ErrNaNInf.
//  5. some Sᵢ not symmetric                    → ErrAsymmetry.
//
// Complexity: O(N·d²) time and space.
func NewObservationSet(theta mat.Matrix, s []mat.Matrix) (*ObservationSet, error) {
	if matrix.ValidateNotNil(theta) != nil {
		return nil, ErrMissingEffects
	}
	if len(s) == 0 {
		return nil, ErrEmptyObservations
	}

	// Stage 1: structure.
	d, err := noiseDim(s)
	if err != nil {
		return nil, err
	}
	if err = matrix.ValidateShape(theta, len(s), d); err != nil {
		r, c := theta.Dims()
		return nil, errors.Wrapf(err, "theta is %d×%d, want %d×%d", r, c, len(s), d)
	}

	// Stage 2: values.
	if err = matrix.ValidateFinite(theta); err != nil {
		return nil, errors.Wrap(err, "theta")
	}
	var i int
	for i = range s {
		if err = matrix.ValidateFinite(s[i]); err != nil {
			return nil, errors.Wrapf(err, "S[%d]", i)
		}
		if err = matrix.ValidateSymmetric(s[i], symTol); err != nil {
			return nil, errors.Wrapf(err, "S[%d]", i)
		}
	}

	// Stage 3: copy into owned storage.
	set := &ObservationSet{dim: d, obs: make([]Observation, len(s))}
	for i = range s {
		sym, _ := matrix.SymCopy(s[i]) // shape validated above
		set.obs[i] = Observation{
			Theta: mat.NewVecDense(d, mat.Row(nil, i, theta)),
			S:     sym,
		}
	}

	return set, nil
}

// FromSlices is NewObservationSet for plain nested slices, as produced by
// file decoders: theta[i] is θᵢ and s[i] is Sᵢ in row-major form.
func FromSlices(theta [][]float64, s [][][]float64) (*ObservationSet, error) {
	if theta == nil {
		return nil, ErrMissingEffects
	}
	if len(s) == 0 {
		return nil, ErrEmptyObservations
	}

	noise := make([]mat.Matrix, len(s))
	var (
		i, j int
		err  error
	)
	for i = range s {
		if noise[i], err = denseFromRows(s[i]); err != nil {
			return nil, errors.Wrapf(err, "S[%d]", i)
		}
	}
	if len(theta) != len(s) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d effect vectors for %d covariances", len(theta), len(s))
	}
	d := len(theta[0])
	for j = range theta {
		if len(theta[j]) != d {
			return nil, errors.Wrapf(ErrDimensionMismatch, "theta[%d] has length %d, want %d", j, len(theta[j]), d)
		}
	}
	if d == 0 {
		return nil, errors.Wrap(ErrDimensionMismatch, "theta has zero columns")
	}
	flat := make([]float64, 0, len(theta)*d)
	for j = range theta {
		flat = append(flat, theta[j]...)
	}

	return NewObservationSet(mat.NewDense(len(theta), d, flat), noise)
}

// Len returns the number of observations N.
func (o *ObservationSet) Len() int { return len(o.obs) }

// Dim returns the shared dimension d.
func (o *ObservationSet) Dim() int { return o.dim }

// At returns observation i. The returned matrices must not be mutated.
func (o *ObservationSet) At(i int) Observation { return o.obs[i] }

// Without returns a new set with the half-open index range [lo, hi) removed.
// hi is clamped to Len() and lo to [0, Len()]. The per-observation storage is
// shared with the receiver; the result keeps the receiver's dimension even
// when it is empty.
//
// Complexity: O(N) for the index table, no matrix copies.
func (o *ObservationSet) Without(lo, hi int) *ObservationSet {
	n := len(o.obs)
	lo = clamp(lo, 0, n)
	hi = clamp(hi, lo, n)

	kept := make([]Observation, 0, n-(hi-lo))
	kept = append(kept, o.obs[:lo]...)
	kept = append(kept, o.obs[hi:]...)

	return &ObservationSet{dim: o.dim, obs: kept}
}

// ThetaMatrix returns a fresh N×d copy of the effect vectors, or nil for an
// empty set (gonum has no zero-row dense matrices).
func (o *ObservationSet) ThetaMatrix() *mat.Dense {
	if len(o.obs) == 0 {
		return nil
	}
	out := mat.NewDense(len(o.obs), o.dim, nil)
	for i, ob := range o.obs {
		out.SetRow(i, ob.Theta.RawVector().Data)
	}

	return out
}

// Slices exports the set back into nested slices (inverse of FromSlices).
func (o *ObservationSet) Slices() (theta [][]float64, s [][][]float64) {
	theta = make([][]float64, len(o.obs))
	s = make([][][]float64, len(o.obs))
	for i, ob := range o.obs {
		theta[i] = mat.Col(nil, 0, ob.Theta)
		s[i] = make([][]float64, o.dim)
		for r := 0; r < o.dim; r++ {
			s[i][r] = mat.Row(nil, r, ob.S)
		}
	}

	return theta, s
}

// noiseDim checks every Sᵢ for presence and squareness against S₀.
func noiseDim(s []mat.Matrix) (int, error) {
	for i := range s {
		if matrix.ValidateNotNil(s[i]) != nil {
			return 0, errors.Wrapf(ErrDimensionMismatch, "S[%d] is nil", i)
		}
	}
	if err := matrix.ValidateSquare(s[0]); err != nil {
		return 0, errors.Wrap(err, "S[0]")
	}
	d, _ := s[0].Dims()
	if d == 0 {
		return 0, errors.Wrap(ErrDimensionMismatch, "S[0] is 0×0")
	}
	for i := 1; i < len(s); i++ {
		if err := matrix.ValidateShape(s[i], d, d); err != nil {
			return 0, errors.Wrapf(err, "S[%d]", i)
		}
	}

	return d, nil
}

// denseFromRows converts a row-major nested slice into a Dense, rejecting
// ragged input.
func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrDimensionMismatch, "empty matrix")
	}
	c := len(rows[0])
	flat := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.Wrapf(ErrDimensionMismatch, "row %d has length %d, want %d", i, len(row), c)
		}
		flat = append(flat, row...)
	}
	if c == 0 {
		return nil, errors.Wrap(ErrDimensionMismatch, "empty matrix")
	}

	return mat.NewDense(len(rows), c, flat), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
