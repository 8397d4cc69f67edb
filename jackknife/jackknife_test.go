// SPDX-License-Identifier: MIT

package jackknife_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/varcomp/core"
	"github.com/katalvlaran/varcomp/estimate"
	"github.com/katalvlaran/varcomp/jackknife"
	"github.com/katalvlaran/varcomp/simulate"
)

func dataset(t *testing.T, n int, seed uint64) *core.ObservationSet {
	t.Helper()
	obs, err := simulate.Dataset(mat.NewSymDense(2, []float64{1, 0.3, 0.3, 0.8}),
		simulate.IdentityNoise(n, 2), simulate.WithSeed(seed))
	require.NoError(t, err)
	return obs
}

func TestRun_ReplicateCountAndShape(t *testing.T) {
	obs := dataset(t, 12, 1)
	for _, b := range []int{1, 2, 5, 12} {
		est, err := jackknife.Run(context.Background(), obs, jackknife.WithBlockSize(b))
		require.NoError(t, err, "b=%d", b)
		assert.Len(t, est.Replicates, 12, "b=%d", b)
		assert.Equal(t, b, est.BlockSize)
		assert.Equal(t, 2, est.StandardError.SymmetricDim())
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.GreaterOrEqual(t, est.StandardError.At(i, j), 0.0)
				assert.False(t, math.IsNaN(est.StandardError.At(i, j)))
			}
		}
	}
}

func TestRun_LeaveOneOutMatchesManual(t *testing.T) {
	obs := dataset(t, 15, 4)

	est, err := jackknife.Run(context.Background(), obs)
	require.NoError(t, err)

	n := obs.Len()
	reps := make([]*mat.SymDense, n)
	for s := 0; s < n; s++ {
		res, err := estimate.Solve(obs.Without(s, s+1))
		require.NoError(t, err)
		reps[s] = res.Estimate
		assert.True(t, mat.Equal(res.Estimate, est.Replicates[s]), "replicate %d", s)
	}

	// b = 1: correction = (N−1)/N.
	assert.InDelta(t, float64(n-1)/float64(n), est.Correction, 1e-15)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var mean, ss float64
			for _, r := range reps {
				mean += r.At(i, j)
			}
			mean /= float64(n)
			for _, r := range reps {
				ss += (r.At(i, j) - mean) * (r.At(i, j) - mean)
			}
			assert.InDelta(t, mean, est.Mean.At(i, j), 1e-12)
			assert.InDelta(t, math.Sqrt(est.Correction*ss), est.StandardError.At(i, j), 1e-12)
		}
	}
}

func TestRun_SlidingWindowRemovesTail(t *testing.T) {
	obs := dataset(t, 6, 2)

	est, err := jackknife.Run(context.Background(), obs, jackknife.WithBlockSize(3))
	require.NoError(t, err)

	// Replicate 4 removes [4, 6): only two observations at the tail.
	res, err := estimate.Solve(obs.Without(4, 6))
	require.NoError(t, err)
	assert.True(t, mat.Equal(res.Estimate, est.Replicates[4]))

	// Replicate 1 removes [1, 4).
	res, err = estimate.Solve(obs.Without(1, 4))
	require.NoError(t, err)
	assert.True(t, mat.Equal(res.Estimate, est.Replicates[1]))
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	obs := dataset(t, 20, 3)

	one, err := jackknife.Run(context.Background(), obs, jackknife.WithWorkers(1), jackknife.WithBlockSize(2))
	require.NoError(t, err)
	many, err := jackknife.Run(context.Background(), obs, jackknife.WithWorkers(8), jackknife.WithBlockSize(2))
	require.NoError(t, err)

	assert.True(t, mat.Equal(one.StandardError, many.StandardError))
	assert.True(t, mat.Equal(one.Mean, many.Mean))
}

func TestRun_BadBlockSize(t *testing.T) {
	obs := dataset(t, 4, 1)
	for _, b := range []int{0, -1, 5} {
		_, err := jackknife.Run(context.Background(), obs, jackknife.WithBlockSize(b))
		assert.ErrorIs(t, err, core.ErrBadBlockSize, "b=%d", b)
	}
	assert.Panics(t, func() { jackknife.WithWorkers(0) })
}

func TestRun_SingularReplicateAborts(t *testing.T) {
	// Observation 0 has S = 0 with a non-zero effect; every replicate that
	// keeps it hits a singular S₀+V at the zero start.
	obs, err := core.FromSlices(
		[][]float64{{1}, {0.5}, {-0.7}, {1.1}},
		[][][]float64{{{0}}, {{1}}, {{1}}, {{1}}},
	)
	require.NoError(t, err)

	_, err = jackknife.StandardError(context.Background(), obs)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNumericalSingularity)
	assert.Contains(t, err.Error(), "jackknife: replicate")
}

func TestRun_CancelledContext(t *testing.T) {
	obs := dataset(t, 8, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := jackknife.Run(ctx, obs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	_, err := jackknife.Run(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrEmptyObservations)
}

func TestRun_ForwardsSolveOptionsAndLogs(t *testing.T) {
	obs := dataset(t, 5, 6)
	c, logs := observer.New(zapcore.DebugLevel)

	est, err := jackknife.Run(context.Background(), obs,
		jackknife.WithLogger(zap.New(c)),
		jackknife.WithSolveOptions(estimate.WithMaxIterations(1)))
	require.NoError(t, err)
	assert.Equal(t, 5, est.Unconverged)
	assert.Equal(t, 5, logs.FilterMessage("replicate done").Len())
	assert.Equal(t, 1, logs.FilterMessage("some jackknife replicates did not converge").Len())
}

func TestCorrection(t *testing.T) {
	assert.InDelta(t, 0.15, jackknife.Correction(5, 2), 1e-15)
	assert.InDelta(t, 0.8, jackknife.Correction(5, 1), 1e-15)
	assert.Equal(t, 0.0, jackknife.Correction(5, 5))
}
