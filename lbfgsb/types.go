// SPDX-License-Identifier: MIT

package lbfgsb

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"
)

// Sentinel errors.
var (
	// ErrBadBounds is returned when bound slices do not match x0 or some
	// lower bound exceeds its upper bound.
	ErrBadBounds = errors.New("lbfgsb: invalid bounds")

	// ErrInfeasibleStart is returned when the objective is not finite at the
	// (projected) starting point.
	ErrInfeasibleStart = errors.New("lbfgsb: objective is not finite at the starting point")

	// ErrNilObjective is returned when Problem.Func is nil.
	ErrNilObjective = errors.New("lbfgsb: objective function is nil")
)

// Termination messages. They follow the wording of the reference Fortran
// L-BFGS-B driver so that logs remain familiar.
const (
	MsgPGTol       = "CONVERGENCE: NORM_OF_PROJECTED_GRADIENT_<=_PGTOL"
	MsgFactr       = "CONVERGENCE: REL_REDUCTION_OF_F_<=_FACTR*EPSMCH"
	MsgMaxIter     = "STOP: TOTAL NO. of ITERATIONS REACHED LIMIT"
	MsgMaxEval     = "STOP: TOTAL NO. of f AND g EVALUATIONS EXCEEDS LIMIT"
	MsgLineSearch  = "ABNORMAL_TERMINATION_IN_LNSRCH"
	MsgNoDirection = "ABNORMAL_TERMINATION_NO_DESCENT_DIRECTION"
)

// Defaults mirror the classic L-BFGS-B driver defaults.
const (
	DefaultMemory             = 10
	DefaultMaxIterations      = 15000
	DefaultMaxFuncEvaluations = 15000
	DefaultGradientTolerance  = 1e-5
	DefaultFactr              = 1e7
	DefaultMaxLineSearch      = 20

	// armijoC1 is the sufficient-decrease constant of the line search.
	armijoC1 = 1e-4
	// backtrack is the step shrink factor of the line search.
	backtrack = 0.5
	// epsMach is the float64 machine epsilon.
	epsMach = 2.220446049250313e-16
)

// Func evaluates the objective at x and writes its gradient into grad
// (len(grad) == len(x)). Returning +Inf or NaN marks x as infeasible.
type Func func(x, grad []float64) (float64, error)

// Problem describes a bound-constrained minimisation.
type Problem struct {
	// Func is the objective with gradient. Required.
	Func Func

	// Lower and Upper are per-variable bounds. Nil means unbounded on that
	// side for every variable; ±Inf entries mean unbounded for one variable.
	Lower []float64
	Upper []float64
}

// Settings tunes the minimiser. Zero fields take the Default* values.
type Settings struct {
	Memory             int
	MaxIterations      int
	MaxFuncEvaluations int
	GradientTolerance  float64
	Factr              float64
	MaxLineSearch      int

	// Logger receives one debug entry per major iteration. Nil disables logging.
	Logger *zap.Logger
}

// Result is the outcome of Minimize. It is never mutated after return.
type Result struct {
	// X is the final point; Grad the objective gradient there; F the value.
	X    []float64
	Grad []float64
	F    float64

	// Status is one of optimize.GradientThreshold, optimize.FunctionConvergence,
	// optimize.IterationLimit, optimize.FunctionEvaluationLimit or
	// optimize.Failure.
	Status  optimize.Status
	Message string
	Stats   optimize.Stats

	// ProjGradNorm is ‖P(x − g) − x‖∞ at X.
	ProjGradNorm float64
}

// Converged reports whether the run ended on one of the convergence tests
// (projected gradient or relative reduction) rather than on a limit or a
// line-search failure.
func (r *Result) Converged() bool {
	return r.Status == optimize.GradientThreshold || r.Status == optimize.FunctionConvergence
}

// withDefaults returns s with zero fields replaced by defaults.
func (s Settings) withDefaults() Settings {
	if s.Memory <= 0 {
		s.Memory = DefaultMemory
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.MaxFuncEvaluations <= 0 {
		s.MaxFuncEvaluations = DefaultMaxFuncEvaluations
	}
	if s.GradientTolerance <= 0 {
		s.GradientTolerance = DefaultGradientTolerance
	}
	if s.Factr <= 0 {
		s.Factr = DefaultFactr
	}
	if s.MaxLineSearch <= 0 {
		s.MaxLineSearch = DefaultMaxLineSearch
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	return s
}
