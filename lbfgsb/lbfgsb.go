// SPDX-License-Identifier: MIT

package lbfgsb

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Minimize runs the projected L-BFGS iteration from x0 and returns the final
// state. x0 is projected onto the box first and is not modified.
//
// Errors:
//   - ErrNilObjective, ErrBadBounds: invalid problem.
//   - ErrInfeasibleStart: f(P(x0)) is not finite.
//   - any error returned by p.Func, wrapped with the evaluation count.
//
// Hitting an iteration or evaluation limit, or a line search that cannot make
// progress, is not an error: the last accepted point is returned with the
// corresponding Status and Message.
//
// Complexity: O(Memory·n) per iteration plus the objective evaluations.
func Minimize(x0 []float64, p Problem, s Settings) (*Result, error) {
	if p.Func == nil {
		return nil, ErrNilObjective
	}
	n := len(x0)
	lower, upper, err := resolveBounds(n, p.Lower, p.Upper)
	if err != nil {
		return nil, err
	}
	s = s.withDefaults()
	start := time.Now()

	st := &state{
		n:     n,
		lower: lower,
		upper: upper,
		fn:    p.Func,
		set:   s,
		x:     make([]float64, n),
		g:     make([]float64, n),
		mem:   newHistory(s.Memory, n),
	}
	copy(st.x, x0)
	st.project(st.x)

	if st.f, err = st.eval(st.x, st.g); err != nil {
		return nil, err
	}
	if !isFinite(st.f) {
		return nil, errors.Wrapf(ErrInfeasibleStart, "f(x0) = %v", st.f)
	}

	status, msg := st.run()

	res := &Result{
		X:            st.x,
		Grad:         st.g,
		F:            st.f,
		Status:       status,
		Message:      msg,
		Stats:        st.stats,
		ProjGradNorm: st.projGradNorm(),
	}
	res.Stats.Runtime = time.Since(start)
	if st.err != nil {
		return nil, st.err
	}

	return res, nil
}

// state carries one run of the minimiser.
type state struct {
	n            int
	lower, upper []float64
	fn           Func
	set          Settings

	x, g  []float64
	f     float64
	mem   *history
	stats optimize.Stats
	err   error
}

// run iterates until a stopping rule fires. The returned status is never
// optimize.NotTerminated.
func (st *state) run() (optimize.Status, string) {
	var (
		d     = make([]float64, st.n)
		xn    = make([]float64, st.n)
		gn    = make([]float64, st.n)
		step  = make([]float64, st.n)
		yk    = make([]float64, st.n)
		fixed = make([]bool, st.n)
	)

	for {
		pg := st.projGradNorm()
		if pg <= st.set.GradientTolerance {
			return optimize.GradientThreshold, MsgPGTol
		}
		if st.stats.MajorIterations >= st.set.MaxIterations {
			return optimize.IterationLimit, MsgMaxIter
		}

		st.activeSet(fixed)
		st.direction(d, fixed)
		if floats.Dot(d, st.g) >= 0 {
			// Curvature pairs produced an ascent direction; fall back to
			// steepest descent on the free variables.
			st.mem.reset()
			st.direction(d, fixed)
			if floats.Dot(d, st.g) >= 0 {
				return optimize.Failure, MsgNoDirection
			}
		}

		fNew, ok := st.lineSearch(d, xn, gn)
		if st.err != nil {
			return optimize.Failure, st.err.Error()
		}
		if st.stats.FuncEvaluations >= st.set.MaxFuncEvaluations && !ok {
			return optimize.FunctionEvaluationLimit, MsgMaxEval
		}
		if !ok {
			if st.mem.len() > 0 {
				st.set.Logger.Debug("line search failed; discarding curvature history",
					zap.Int("iteration", st.stats.MajorIterations))
				st.mem.reset()
				continue
			}
			return optimize.Failure, MsgLineSearch
		}

		floats.SubTo(step, xn, st.x)
		floats.SubTo(yk, gn, st.g)
		fOld := st.f
		copy(st.x, xn)
		copy(st.g, gn)
		st.f = fNew
		st.stats.MajorIterations++

		st.set.Logger.Debug("iteration",
			zap.Int("iter", st.stats.MajorIterations),
			zap.Float64("f", st.f),
			zap.Float64("proj_grad", pg),
			zap.Int("evals", st.stats.FuncEvaluations))

		if fOld-st.f <= st.set.Factr*epsMach*math.Max(math.Max(math.Abs(fOld), math.Abs(st.f)), 1) {
			return optimize.FunctionConvergence, MsgFactr
		}
		if st.stats.FuncEvaluations >= st.set.MaxFuncEvaluations {
			return optimize.FunctionEvaluationLimit, MsgMaxEval
		}

		if sy := floats.Dot(step, yk); sy > epsMach*floats.Dot(yk, yk) {
			st.mem.push(step, yk, sy)
		}
	}
}

// lineSearch backtracks along the projected path from st.x in direction d.
// On success xn/gn hold the accepted point and gradient.
func (st *state) lineSearch(d, xn, gn []float64) (float64, bool) {
	alpha := 1.0
	if st.mem.len() == 0 {
		// Without curvature information the direction is -g; start with a
		// unit-length step.
		if nrm := floats.Norm(d, 2); nrm > 1 {
			alpha = 1 / nrm
		}
	}

	for ls := 0; ls < st.set.MaxLineSearch; ls++ {
		if st.stats.FuncEvaluations >= st.set.MaxFuncEvaluations {
			return 0, false
		}
		floats.AddScaledTo(xn, st.x, alpha, d)
		st.project(xn)

		var decrease float64
		for i := range xn {
			decrease += st.g[i] * (xn[i] - st.x[i])
		}
		if decrease >= 0 {
			// Projection swallowed the whole step.
			return 0, false
		}

		f, err := st.eval(xn, gn)
		if err != nil {
			st.err = err
			return 0, false
		}
		if isFinite(f) && f <= st.f+armijoC1*decrease {
			return f, true
		}
		alpha *= backtrack
	}

	return 0, false
}

// direction writes the quasi-Newton direction -H·g restricted to the free
// variables into d; fixed variables get a zero component.
func (st *state) direction(d []float64, fixed []bool) {
	for i := range d {
		if fixed[i] {
			d[i] = 0
		} else {
			d[i] = st.g[i]
		}
	}
	st.mem.apply(d)
	for i := range d {
		if fixed[i] {
			d[i] = 0
		} else {
			d[i] = -d[i]
		}
	}
}

// activeSet marks variables sitting on a bound with the gradient pointing
// out of the box.
func (st *state) activeSet(fixed []bool) {
	for i := range fixed {
		fixed[i] = (st.x[i] <= st.lower[i] && st.g[i] > 0) ||
			(st.x[i] >= st.upper[i] && st.g[i] < 0)
	}
}

// projGradNorm returns ‖P(x − g) − x‖∞.
func (st *state) projGradNorm() float64 {
	var m float64
	for i, xi := range st.x {
		v := xi - st.g[i]
		v = math.Min(math.Max(v, st.lower[i]), st.upper[i])
		if a := math.Abs(v - xi); a > m {
			m = a
		}
	}

	return m
}

// project clips x onto the box in place.
func (st *state) project(x []float64) {
	for i := range x {
		x[i] = math.Min(math.Max(x[i], st.lower[i]), st.upper[i])
	}
}

// eval calls the objective and keeps the evaluation counters.
func (st *state) eval(x, g []float64) (float64, error) {
	st.stats.FuncEvaluations++
	st.stats.GradEvaluations++
	f, err := st.fn(x, g)
	if err != nil {
		return 0, errors.Wrapf(err, "evaluation %d", st.stats.FuncEvaluations)
	}

	return f, nil
}

// resolveBounds expands nil bound slices and validates l ≤ u.
func resolveBounds(n int, lower, upper []float64) ([]float64, []float64, error) {
	l := make([]float64, n)
	u := make([]float64, n)
	switch {
	case lower == nil:
		for i := range l {
			l[i] = math.Inf(-1)
		}
	case len(lower) != n:
		return nil, nil, errors.Wrapf(ErrBadBounds, "%d lower bounds for %d variables", len(lower), n)
	default:
		copy(l, lower)
	}
	switch {
	case upper == nil:
		for i := range u {
			u[i] = math.Inf(1)
		}
	case len(upper) != n:
		return nil, nil, errors.Wrapf(ErrBadBounds, "%d upper bounds for %d variables", len(upper), n)
	default:
		copy(u, upper)
	}
	for i := range l {
		if math.IsNaN(l[i]) || math.IsNaN(u[i]) || l[i] > u[i] {
			return nil, nil, errors.Wrapf(ErrBadBounds, "variable %d: [%v, %v]", i, l[i], u[i])
		}
	}

	return l, u, nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
