// SPDX-License-Identifier: MIT

package jackknife

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/katalvlaran/varcomp/core"
	"github.com/katalvlaran/varcomp/estimate"
)

// Estimate is the outcome of one jackknife run.
type Estimate struct {
	// Replicates[s] is the fit with window [s, min(s+b, N)) removed.
	Replicates []*mat.SymDense

	// Mean is the elementwise replicate average.
	Mean *mat.SymDense

	// StandardError is the per-entry jackknife standard error (same shape as V).
	StandardError *mat.SymDense

	// BlockSize is b; Correction is (N − b)/(b·C(N, b)).
	BlockSize  int
	Correction float64

	// Unconverged counts replicates whose optimiser stopped on a limit or a
	// failed line search rather than a convergence test.
	Unconverged int
}

// Run performs the sliding-window jackknife over obs.
//
// Errors:
//   - core.ErrEmptyObservations when obs is nil or empty.
//   - core.ErrBadBlockSize unless 1 ≤ b ≤ N.
//   - any replicate error from estimate.Solve, wrapped with the replicate index.
//   - ctx.Err() when the context is cancelled between replicates.
//
// Complexity: N fits of N−k observations each.
func Run(ctx context.Context, obs *core.ObservationSet, opts ...Option) (*Estimate, error) {
	if obs == nil || obs.Len() == 0 {
		return nil, core.ErrEmptyObservations
	}
	o := gatherOptions(opts...)
	n, b := obs.Len(), o.blockSize
	if b < 1 || b > n {
		return nil, errors.Wrapf(core.ErrBadBlockSize, "b=%d, N=%d", b, n)
	}

	solveOpts := append([]estimate.Option{estimate.WithLogger(o.logger.Named("solve"))}, o.solve...)
	reps := make([]*mat.SymDense, n)
	converged := make([]bool, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for s := 0; s < n; s++ {
		if gctx.Err() != nil {
			break
		}
		s := s // per-iteration copy (go.mod targets go1.21 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := estimate.Solve(obs.Without(s, s+b), solveOpts...)
			if err != nil {
				return errors.Wrapf(err, "jackknife: replicate %d", s)
			}
			reps[s], converged[s] = res.Estimate, res.Success
			o.logger.Debug("replicate done",
				zap.Int("replicate", s),
				zap.Bool("success", res.Success),
				zap.Int("iterations", res.Iterations()))

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	est := aggregate(reps, b)
	for _, ok := range converged {
		if !ok {
			est.Unconverged++
		}
	}
	if est.Unconverged > 0 {
		o.logger.Warn("some jackknife replicates did not converge",
			zap.Int("unconverged", est.Unconverged), zap.Int("replicates", n))
	}
	o.logger.Debug("jackknife finished",
		zap.Int("replicates", n),
		zap.Int("block_size", b),
		zap.Float64("correction", est.Correction))

	return est, nil
}

// StandardError is Run reduced to its standard-error matrix.
func StandardError(ctx context.Context, obs *core.ObservationSet, opts ...Option) (*mat.SymDense, error) {
	est, err := Run(ctx, obs, opts...)
	if err != nil {
		return nil, err
	}

	return est.StandardError, nil
}

// Correction returns (N − b)/(b·C(N, b)).
func Correction(n, b int) float64 {
	return float64(n-b) / (float64(b) * combin.GeneralizedBinomial(float64(n), float64(b)))
}

// aggregate reduces the replicates in index order.
func aggregate(reps []*mat.SymDense, b int) *Estimate {
	n := len(reps)
	d := reps[0].SymmetricDim()

	mean := mat.NewSymDense(d, nil)
	for _, r := range reps {
		mean.AddSym(mean, r)
	}
	mean.ScaleSym(1/float64(n), mean)

	corr := Correction(n, b)
	se := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			var ss float64
			for _, r := range reps {
				dev := r.At(i, j) - mean.At(i, j)
				ss += dev * dev
			}
			se.SetSym(i, j, math.Sqrt(corr*ss))
		}
	}

	return &Estimate{
		Replicates:    reps,
		Mean:          mean,
		StandardError: se,
		BlockSize:     b,
		Correction:    corr,
	}
}
