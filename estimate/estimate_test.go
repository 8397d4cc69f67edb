// SPDX-License-Identifier: MIT

package estimate_test

import (
	"fmt"
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
	"github.com/katalvlaran/varcomp/matrix"
	"github.com/katalvlaran/varcomp/simulate"
)

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	c, logs := observer.New(level)
	return zap.New(c), logs
}

func TestSolve_ScalarClosedForm(t *testing.T) {
	const s = 1.0
	obs, err := simulate.Dataset(mat.NewSymDense(1, []float64{2}),
		simulate.ScaledNoise(500, 1, s), simulate.WithSeed(11))
	require.NoError(t, err)

	// For d=1 with a common s the MLE is max(0, mean θ² − s).
	var m2 float64
	for i := 0; i < obs.Len(); i++ {
		th := obs.At(i).Theta.AtVec(0)
		m2 += th * th
	}
	m2 /= float64(obs.Len())
	want := math.Max(0, m2-s)

	res, err := estimate.Solve(obs)
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)
	assert.InDelta(t, want, res.Estimate.At(0, 0), 5e-3)
	assert.Len(t, res.Params, 1)
	assert.Len(t, res.Gradient, 1)
	assert.Positive(t, res.Iterations())
}

func TestSolve_DiagonalStaysOnBound(t *testing.T) {
	// mean θ² = 0.01 ≪ s: the unconstrained optimum is negative.
	theta := make([][]float64, 40)
	s := make([][][]float64, 40)
	for i := range theta {
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		theta[i] = []float64{0.1 * sign}
		s[i] = [][]float64{{1}}
	}
	obs, err := core.FromSlices(theta, s)
	require.NoError(t, err)

	res, err := estimate.Solve(obs, estimate.WithInitialGuess(mat.NewDense(1, 1, []float64{0.5})))
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)
	assert.GreaterOrEqual(t, res.Estimate.At(0, 0), 0.0)
	assert.InDelta(t, 0, res.Estimate.At(0, 0), 1e-6)
	// −log L still increases into the box.
	assert.Greater(t, res.Gradient[0], 0.0)
}

func TestSolve_WrongShapeGuessRecovers(t *testing.T) {
	obs, err := simulate.Dataset(mat.NewSymDense(2, []float64{1, 0, 0, 1}),
		simulate.IdentityNoise(200, 2), simulate.WithSeed(5))
	require.NoError(t, err)

	log, logs := observed(zapcore.DebugLevel)
	res, err := estimate.Solve(obs,
		estimate.WithInitialGuess(mat.NewDense(3, 3, nil)),
		estimate.WithLogger(log))
	require.NoError(t, err)
	assert.True(t, res.InitialGuessReplaced)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).
		FilterMessage("initial guess has the wrong shape, using the zero matrix").Len())

	// Same answer as an explicit zero start.
	ref, err := estimate.Solve(obs)
	require.NoError(t, err)
	assert.False(t, ref.InitialGuessReplaced)
	ok, err := matrix.AllClose(res.Estimate, ref.Estimate, 0, 1e-12)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSolve_NonFiniteGuessRecovers(t *testing.T) {
	obs, err := simulate.Dataset(mat.NewSymDense(1, []float64{1}),
		simulate.IdentityNoise(50, 1), simulate.WithSeed(2))
	require.NoError(t, err)

	res, err := estimate.Solve(obs, estimate.WithInitialGuess(mat.NewDense(1, 1, []float64{math.NaN()})))
	require.NoError(t, err)
	assert.True(t, res.InitialGuessReplaced)
}

func TestSolve_NilGuessLogsDebug(t *testing.T) {
	obs, err := simulate.Dataset(mat.NewSymDense(1, []float64{1}),
		simulate.IdentityNoise(50, 1), simulate.WithSeed(2))
	require.NoError(t, err)

	log, logs := observed(zapcore.DebugLevel)
	res, err := estimate.Solve(obs, estimate.WithLogger(log))
	require.NoError(t, err)
	assert.False(t, res.InitialGuessReplaced)
	assert.Equal(t, 1, logs.FilterMessage("no initial guess, starting from the zero matrix").Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.InfoLevel).Len())
}

func TestSolve_VerboseSummary(t *testing.T) {
	obs, err := simulate.Dataset(mat.NewSymDense(1, []float64{1}),
		simulate.IdentityNoise(50, 1), simulate.WithSeed(2))
	require.NoError(t, err)

	log, logs := observed(zapcore.InfoLevel)
	_, err = estimate.Solve(obs, estimate.WithLogger(log), estimate.WithVerbose(true))
	require.NoError(t, err)
	entries := logs.FilterMessage("fit finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Contains(t, fields, "estimate")
	assert.Contains(t, fields, "gradient")
	assert.Contains(t, fields, "status")
}

func TestSolve_SingularAborts(t *testing.T) {
	// S₀ = 0 with θ₀ ≠ 0: S₀ + V is singular at the zero start.
	obs, err := core.FromSlices(
		[][]float64{{1, 2}, {0.5, -1}},
		[][][]float64{{{0, 0}, {0, 0}}, {{1, 0}, {0, 1}}},
	)
	require.NoError(t, err)

	_, err = estimate.Solve(obs)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNumericalSingularity)
}

func TestSolve_IndefiniteStart(t *testing.T) {
	obs, err := core.FromSlices([][]float64{{1}}, [][][]float64{{{-1}}})
	require.NoError(t, err)

	_, err = estimate.Solve(obs)
	assert.ErrorIs(t, err, core.ErrNotPositiveDefinite)
}

func TestSolve_IterationCapIsNotAnError(t *testing.T) {
	obs, err := simulate.Dataset(mat.NewSymDense(2, []float64{1, 0.2, 0.2, 1}),
		simulate.IdentityNoise(300, 2), simulate.WithSeed(8))
	require.NoError(t, err)

	res, err := estimate.Solve(obs, estimate.WithMaxIterations(1))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Iterations())
	assert.NotEmpty(t, res.Message)
}

func TestSolve_NilObservations(t *testing.T) {
	_, err := estimate.Solve(nil)
	assert.ErrorIs(t, err, core.ErrEmptyObservations)
}

func TestSolve_RecoversTrueCovariance(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end recovery is slow")
	}
	truth := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	noise := simulate.IdentityNoise(2000, 2)

	hits := 0
	for seed := uint64(1); seed <= 10; seed++ {
		obs, err := simulate.Dataset(truth, noise, simulate.WithSeed(seed))
		require.NoError(t, err)

		res, err := estimate.Solve(obs)
		require.NoError(t, err)
		require.True(t, res.Success, res.Message)

		dist, err := matrix.FrobeniusDistance(res.Estimate, truth)
		require.NoError(t, err)
		if dist < 0.2 {
			hits++
		}
	}
	assert.GreaterOrEqual(t, hits, 8, "estimates within 0.2 of V in %d/10 trials", hits)
}

func TestOptions_PanicOnNonsense(t *testing.T) {
	assert.Panics(t, func() { estimate.WithMaxIterations(0) })
	assert.Panics(t, func() { estimate.WithMemory(-1) })
	assert.Panics(t, func() { estimate.WithGradientTolerance(0) })
	assert.Panics(t, func() { estimate.WithGradientTolerance(math.NaN()) })
	assert.Panics(t, func() { estimate.WithFactr(math.Inf(1)) })
	assert.Panics(t, func() { estimate.WithMaxLineSearch(0) })
	assert.NotPanics(t, func() { estimate.WithLogger(nil) })
}

func ExampleSolve() {
	obs, err := core.FromSlices(
		[][]float64{{1.2}, {-0.4}, {2.1}, {-1.7}, {0.3}},
		[][][]float64{{{0.5}}, {{0.5}}, {{0.5}}, {{0.5}}, {{0.5}}},
	)
	if err != nil {
		panic(err)
	}
	res, err := estimate.Solve(obs)
	if err != nil {
		panic(err)
	}
	fmt.Printf("success=%v V=%.2f\n", res.Success, res.Estimate.At(0, 0))
	// Output: success=true V=1.30
}
