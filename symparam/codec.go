// SPDX-License-Identifier: MIT

package symparam

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrBadParamLength is returned when a reduced vector does not have
// d·(d+1)/2 entries for the requested (or any) dimension d.
var ErrBadParamLength = errors.New("symparam: reduced vector length is not d(d+1)/2")

// NumParams returns d·(d+1)/2, the length of the reduced vector for side d.
func NumParams(d int) int { return d * (d + 1) / 2 }

// DimFromParams inverts NumParams. It fails with ErrBadParamLength when k is
// not a triangular number (or is non-positive).
func DimFromParams(k int) (int, error) {
	if k <= 0 {
		return 0, errors.Wrapf(ErrBadParamLength, "k=%d", k)
	}
	// d = (−1 + sqrt(1+8k)) / 2, checked exactly in integers.
	d := int((math.Sqrt(float64(8*k+1)) - 1) / 2)
	for NumParams(d) < k {
		d++
	}
	if NumParams(d) != k {
		return 0, errors.Wrapf(ErrBadParamLength, "k=%d", k)
	}

	return d, nil
}

// Encode returns the reduced vector of the symmetric matrix m: the upper
// triangle in row-major order, diagonal included once.
//
// Complexity: O(d²).
func Encode(m mat.Symmetric) []float64 {
	d := m.SymmetricDim()

	return EncodeInto(make([]float64, NumParams(d)), m)
}

// EncodeInto writes the reduced vector of m into dst and returns it.
// dst must have NumParams(m.SymmetricDim()) entries; it panics otherwise,
// like the gonum kernels it sits next to.
func EncodeInto(dst []float64, m mat.Symmetric) []float64 {
	d := m.SymmetricDim()
	if len(dst) != NumParams(d) {
		panic("symparam: EncodeInto: destination length mismatch")
	}
	k := 0
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			dst[k] = m.At(i, j)
			k++
		}
	}

	return dst
}

// Decode rebuilds the symmetric d×d matrix from its reduced vector v.
// Each traversal value is placed at (i,j) and mirrored at (j,i).
//
// Errors: ErrBadParamLength when len(v) != NumParams(d) or d < 1.
// Complexity: O(d²).
func Decode(v []float64, d int) (*mat.SymDense, error) {
	if d < 1 || len(v) != NumParams(d) {
		return nil, errors.Wrapf(ErrBadParamLength, "len=%d, d=%d", len(v), d)
	}
	out := mat.NewSymDense(d, nil)
	DecodeInto(out, v)

	return out, nil
}

// DecodeInto is the allocation-free form of Decode. dst fixes d; v must have
// NumParams(d) entries (panics otherwise).
func DecodeInto(dst *mat.SymDense, v []float64) {
	d := dst.SymmetricDim()
	if len(v) != NumParams(d) {
		panic("symparam: DecodeInto: source length mismatch")
	}
	k := 0
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			dst.SetSym(i, j, v[k]) // SetSym writes both (i,j) and (j,i)
			k++
		}
	}
}

// FoldGradient folds an elementwise d×d derivative g into the reduced
// gradient, in Encode order. For i≠j the stored value is g(i,j)+g(j,i),
// which is 2·g(i,j) for a symmetric g; for i=j it is g(i,i).
//
// Every gradient handed to the optimizer must be folded here; an unfolded
// gradient disagrees with the objective along each covariance direction.
//
// dst is reused when it has the right length; otherwise a new slice is made.
// Complexity: O(d²).
func FoldGradient(g mat.Matrix, dst []float64) []float64 {
	d, _ := g.Dims()
	if len(dst) != NumParams(d) {
		dst = make([]float64, NumParams(d))
	}
	k := 0
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			if i == j {
				dst[k] = g.At(i, i)
			} else {
				dst[k] = g.At(i, j) + g.At(j, i)
			}
			k++
		}
	}

	return dst
}
