// SPDX-License-Identifier: MIT

package simulate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/varcomp/core"
	"github.com/katalvlaran/varcomp/simulate"
)

func TestEffects_DeterministicSeed(t *testing.T) {
	v := mat.NewSymDense(2, []float64{1, 0.3, 0.3, 2})
	s := simulate.IdentityNoise(50, 2)

	a, err := simulate.Effects(v, s, simulate.WithSeed(42))
	require.NoError(t, err)
	b, err := simulate.Effects(v, s, simulate.WithSeed(42))
	require.NoError(t, err)
	c, err := simulate.Effects(v, s, simulate.WithSeed(43))
	require.NoError(t, err)

	assert.True(t, mat.Equal(a, b))
	assert.False(t, mat.Equal(a, c))

	// seed 0 is the default seed
	z, err := simulate.Effects(v, s, simulate.WithSeed(0))
	require.NoError(t, err)
	def, err := simulate.Effects(v, s)
	require.NoError(t, err)
	assert.True(t, mat.Equal(z, def))
}

func TestEffects_MarginalCovariance(t *testing.T) {
	v := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 1})
	theta, err := simulate.Effects(v, simulate.ScaledNoise(20000, 2, 0.5), simulate.WithSeed(7))
	require.NoError(t, err)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, theta, nil)
	// V + 0.5·I
	assert.InDelta(t, 1.5, cov.At(0, 0), 0.06)
	assert.InDelta(t, 1.5, cov.At(1, 1), 0.06)
	assert.InDelta(t, 0.5, cov.At(0, 1), 0.05)
}

func TestEffects_SingularPSD(t *testing.T) {
	// rank-one V and zero noise: every draw lies on the line y = x.
	v := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	zero := simulate.ScaledNoise(10, 2, 0)

	theta, err := simulate.Effects(v, zero, simulate.WithSeed(3))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.InDelta(t, theta.At(i, 0), theta.At(i, 1), 1e-9)
	}
}

func TestEffects_Errors(t *testing.T) {
	v := mat.NewSymDense(2, []float64{1, 0, 0, 1})

	_, err := simulate.Effects(v, nil)
	assert.ErrorIs(t, err, core.ErrEmptyObservations)

	_, err = simulate.Effects(v, simulate.IdentityNoise(3, 3))
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	indefinite := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err = simulate.Effects(indefinite, simulate.IdentityNoise(3, 2))
	assert.ErrorIs(t, err, core.ErrNotPositiveDefinite)
}

func TestDataset(t *testing.T) {
	v := mat.NewSymDense(1, []float64{2})
	obs, err := simulate.Dataset(v, simulate.IdentityNoise(25, 1), simulate.WithSeed(9))
	require.NoError(t, err)
	assert.Equal(t, 25, obs.Len())
	assert.Equal(t, 1, obs.Dim())
	assert.Equal(t, 1.0, obs.At(0).S.At(0, 0))
}
