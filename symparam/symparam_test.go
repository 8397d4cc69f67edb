// SPDX-License-Identifier: MIT
// Package symparam_test covers the codec round-trip, gradient folding and
// bound alignment.
package symparam_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/varcomp/symparam"
)

func randomSym(rng *rand.Rand, d int) *mat.SymDense {
	m := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			m.SetSym(i, j, rng.NormFloat64()*10)
		}
	}
	return m
}

func TestEncode_Order(t *testing.T) {
	t.Parallel()

	m := mat.NewSymDense(3, []float64{
		1, 2, 3,
		2, 4, 5,
		3, 5, 6,
	})
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, symparam.Encode(m))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(17))
	for d := 1; d <= 6; d++ {
		m := randomSym(rng, d)
		v := symparam.Encode(m)
		require.Len(t, v, symparam.NumParams(d))

		back, err := symparam.Decode(v, d)
		require.NoError(t, err)
		assert.True(t, mat.Equal(m, back), "d=%d", d)
	}
}

func TestDecode_Mirrors(t *testing.T) {
	t.Parallel()

	m, err := symparam.Decode([]float64{1, -2, 3}, 2)
	require.NoError(t, err)
	assert.Equal(t, -2.0, m.At(0, 1))
	assert.Equal(t, -2.0, m.At(1, 0))
	assert.Equal(t, 3.0, m.At(1, 1))
}

func TestDecode_BadLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    []float64
		d    int
	}{
		{"too short", []float64{1, 2}, 2},
		{"too long", []float64{1, 2, 3, 4}, 2},
		{"zero dim", nil, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := symparam.Decode(tc.v, tc.d)
			require.Error(t, err)
			require.True(t, errors.Is(err, symparam.ErrBadParamLength))
		})
	}
}

func TestDimFromParams(t *testing.T) {
	t.Parallel()

	for d := 1; d <= 50; d++ {
		got, err := symparam.DimFromParams(symparam.NumParams(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	for _, k := range []int{0, -3, 2, 4, 5, 7, 11} {
		_, err := symparam.DimFromParams(k)
		assert.ErrorIs(t, err, symparam.ErrBadParamLength, "k=%d", k)
	}
}

func TestFoldGradient_DoublesOffDiagonal(t *testing.T) {
	t.Parallel()

	g := mat.NewSymDense(3, []float64{
		1, 2, 3,
		2, 4, 5,
		3, 5, 6,
	})
	assert.Equal(t, []float64{1, 4, 6, 4, 10, 6}, symparam.FoldGradient(g, nil))

	// asymmetric input sums both positions
	a := mat.NewDense(2, 2, []float64{1, 2, 7, 3})
	dst := make([]float64, 3)
	out := symparam.FoldGradient(a, dst)
	assert.Equal(t, []float64{1, 9, 3}, out)
	assert.Equal(t, &dst[0], &out[0], "dst of the right length is reused")
}

// The folded gradient must agree with a directional derivative of
// f(V) = Σᵢⱼ Wᵢⱼ·Vᵢⱼ taken in the reduced coordinates.
func TestFoldGradient_MatchesReducedDerivative(t *testing.T) {
	t.Parallel()

	w := mat.NewSymDense(2, []float64{0.5, -1.5, -1.5, 2})
	f := func(v []float64) float64 {
		m, err := symparam.Decode(v, 2)
		require.NoError(t, err)
		var s float64
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				s += w.At(i, j) * m.At(i, j)
			}
		}
		return s
	}

	folded := symparam.FoldGradient(w, nil)
	base := []float64{0.1, 0.2, 0.3}
	const h = 1e-6
	for k := range base {
		up := append([]float64(nil), base...)
		dn := append([]float64(nil), base...)
		up[k] += h
		dn[k] -= h
		assert.InDelta(t, folded[k], (f(up)-f(dn))/(2*h), 1e-6, "k=%d", k)
	}
}

func TestBounds_Alignment(t *testing.T) {
	t.Parallel()

	for m := 1; m <= 5; m++ {
		b := symparam.Bounds(m)
		require.Len(t, b, symparam.NumParams(m))
		diag := map[int]bool{}
		for _, k := range symparam.DiagonalIndices(m) {
			diag[k] = true
		}
		require.Len(t, diag, m)
		for k, bd := range b {
			assert.Equal(t, diag[k], symparam.IsDiagonalIndex(k, m))
			if diag[k] {
				assert.Equal(t, 0.0, bd.Lower)
			} else {
				assert.True(t, math.IsInf(bd.Lower, -1))
			}
			assert.True(t, math.IsInf(bd.Upper, 1))
		}
	}

	// Encoding the identity puts ones exactly on the diagonal positions.
	id := mat.NewSymDense(4, []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1})
	for k, v := range symparam.Encode(id) {
		assert.Equal(t, symparam.IsDiagonalIndex(k, 4), v == 1)
	}
}

func TestSplitBounds(t *testing.T) {
	t.Parallel()

	lo, up := symparam.SplitBounds(symparam.Bounds(2))
	assert.Equal(t, []float64{0, math.Inf(-1), 0}, lo)
	assert.Equal(t, []float64{math.Inf(1), math.Inf(1), math.Inf(1)}, up)
}

func TestEncodeInto_PanicsOnLength(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { symparam.EncodeInto(make([]float64, 2), mat.NewSymDense(2, nil)) })
	assert.Panics(t, func() { symparam.DecodeInto(mat.NewSymDense(2, nil), make([]float64, 4)) })
}

func ExampleEncode() {
	v := mat.NewSymDense(2, []float64{
		1.5, 0.2,
		0.2, 0.7,
	})
	fmt.Println(symparam.Encode(v))
	// Output: [1.5 0.2 0.7]
}

func ExampleBounds() {
	for _, b := range symparam.Bounds(2) {
		fmt.Println(b.Lower, b.Upper)
	}
	// Output:
	// 0 +Inf
	// -Inf +Inf
	// 0 +Inf
}
