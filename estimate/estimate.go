// SPDX-License-Identifier: MIT

package estimate

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/varcomp/core"
	"github.com/katalvlaran/varcomp/lbfgsb"
	"github.com/katalvlaran/varcomp/likelihood"
	"github.com/katalvlaran/varcomp/matrix"
	"github.com/katalvlaran/varcomp/symparam"
)

// Result is the outcome of one Solve call. It is never mutated after return.
type Result struct {
	// Estimate is the fitted V (d×d, symmetric, diagonal ≥ 0).
	Estimate *mat.SymDense

	// Params is Estimate in reduced (upper-triangle) form.
	Params []float64

	// Gradient is ∂(−log L)/∂Params at Params.
	Gradient []float64

	// NegLogLik is −log L at Params.
	NegLogLik float64

	// Status is the minimiser's termination status; Success is true only for
	// the convergence statuses (projected gradient or relative reduction).
	Status  optimize.Status
	Success bool
	Message string

	// Stats carries iteration and evaluation counts and the wall time.
	Stats optimize.Stats

	// InitialGuessReplaced is set when a supplied guess was malformed and the
	// zero matrix was used instead.
	InitialGuessReplaced bool
}

// Iterations is the number of major iterations.
func (r *Result) Iterations() int { return r.Stats.MajorIterations }

// Solve fits V to obs.
//
// Implementation:
//   - Stage 1: resolve options and the initial guess (zero fallback).
//   - Stage 2: encode, take bounds, minimise −log L with lbfgsb.
//   - Stage 3: decode the optimum and assemble the Result.
//
// Errors:
//   - core.ErrEmptyObservations when obs is nil.
//   - core.ErrNumericalSingularity when some Sᵢ+V becomes singular.
//   - core.ErrNotPositiveDefinite when the likelihood is undefined already
//     at the starting point.
//
// Non-convergence is reported through Result.Success, never as an error.
//
// Complexity: O(iterations · N · d³).
func Solve(obs *core.ObservationSet, opts ...Option) (*Result, error) {
	if obs == nil {
		return nil, core.ErrEmptyObservations
	}
	o := gatherOptions(opts...)
	m := obs.Dim()

	// Stage 1: starting point.
	start, replaced := resolveGuess(o.initialGuess, m, o.logger)

	// Stage 2: minimise.
	eval, err := likelihood.NewEvaluator(obs)
	if err != nil {
		return nil, err
	}
	lower, upper := symparam.SplitBounds(symparam.Bounds(m))
	objective := func(x, grad []float64) (float64, error) {
		f, err := eval.Eval(x, grad)
		if errors.Is(err, core.ErrNotPositiveDefinite) {
			return math.Inf(1), nil
		}

		return f, err
	}

	res, err := lbfgsb.Minimize(symparam.Encode(start), lbfgsb.Problem{
		Func:  objective,
		Lower: lower,
		Upper: upper,
	}, o.settings())
	if err != nil {
		if errors.Is(err, lbfgsb.ErrInfeasibleStart) {
			return nil, fmt.Errorf("estimate: %w: %w", core.ErrNotPositiveDefinite, err)
		}
		return nil, errors.Wrap(err, "estimate: solve")
	}

	// Stage 3: decode.
	est, err := symparam.Decode(res.X, m)
	if err != nil {
		return nil, err
	}
	out := &Result{
		Estimate:             est,
		Params:               res.X,
		Gradient:             res.Grad,
		NegLogLik:            res.F,
		Status:               res.Status,
		Success:              res.Converged(),
		Message:              res.Message,
		Stats:                res.Stats,
		InitialGuessReplaced: replaced,
	}
	report(o, out)

	return out, nil
}

// resolveGuess returns the starting matrix and whether a supplied guess had
// to be replaced.
func resolveGuess(guess mat.Matrix, m int, log *zap.Logger) (*mat.SymDense, bool) {
	if matrix.ValidateNotNil(guess) != nil {
		log.Debug("no initial guess, starting from the zero matrix", zap.Int("dim", m))
		return mat.NewSymDense(m, nil), false
	}

	r, c := guess.Dims()
	if err := matrix.ValidateShape(guess, m, m); err != nil {
		log.Warn("initial guess has the wrong shape, using the zero matrix",
			zap.Int("rows", r), zap.Int("cols", c), zap.Int("want", m))
		return mat.NewSymDense(m, nil), true
	}
	if err := matrix.ValidateFinite(guess); err != nil {
		log.Warn("initial guess has non-finite entries, using the zero matrix", zap.Error(err))
		return mat.NewSymDense(m, nil), true
	}

	// Only the upper triangle is a free parameter.
	sym, _ := matrix.SymCopy(guess)

	return sym, false
}

// report logs the fit summary: Info when verbose, Debug otherwise.
func report(o Options, r *Result) {
	fields := []zap.Field{
		zap.Bool("success", r.Success),
		zap.Stringer("status", r.Status),
		zap.String("message", r.Message),
		zap.Int("iterations", r.Stats.MajorIterations),
		zap.Int("evaluations", r.Stats.FuncEvaluations),
		zap.Float64("neg_log_lik", r.NegLogLik),
		zap.Float64s("estimate", r.Params),
		zap.Float64s("gradient", r.Gradient),
		zap.Float64("max_abs_gradient", floats.Norm(r.Gradient, math.Inf(1))),
		zap.Duration("runtime", r.Stats.Runtime),
	}
	if o.verbose {
		o.logger.Info("fit finished", fields...)
		if !r.Success {
			o.logger.Warn("optimiser did not converge; the estimate may be unreliable",
				zap.String("message", r.Message))
		}
		return
	}
	o.logger.Debug("fit finished", fields...)
}
