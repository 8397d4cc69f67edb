// SPDX-License-Identifier: MIT

// Package estimate: functional configuration for Solve. This file defines
//   - Option / Options,
//   - documented defaults (constants),
//   - WithX constructors (panic on nonsensical values),
//   - gatherOptions, the single resolution helper.
package estimate

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/varcomp/lbfgsb"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultMaxIterations caps major quasi-Newton iterations.
	DefaultMaxIterations = lbfgsb.DefaultMaxIterations

	// DefaultMemory is the number of stored correction pairs.
	DefaultMemory = lbfgsb.DefaultMemory

	// DefaultGradientTolerance is the projected-gradient stopping tolerance.
	DefaultGradientTolerance = lbfgsb.DefaultGradientTolerance

	// DefaultFactr scales machine epsilon into the relative-reduction test.
	DefaultFactr = lbfgsb.DefaultFactr

	// DefaultMaxLineSearch caps backtracking steps per iteration.
	DefaultMaxLineSearch = lbfgsb.DefaultMaxLineSearch

	// DefaultVerbose toggles the Info-level fit summary.
	DefaultVerbose = false
)

// ---------- Internal panic messages ----------

const (
	panicMaxIterations = "estimate: WithMaxIterations: n must be > 0"
	panicMemory        = "estimate: WithMemory: m must be > 0"
	panicGradTol       = "estimate: WithGradientTolerance: tol must be finite and > 0"
	panicFactr         = "estimate: WithFactr: factr must be finite and > 0"
	panicMaxLineSearch = "estimate: WithMaxLineSearch: n must be > 0"
)

// Option mutates Options. Constructors panic only on programmer error.
type Option func(*Options)

// Options is the resolved configuration of one Solve call.
type Options struct {
	initialGuess mat.Matrix
	logger       *zap.Logger
	verbose      bool

	maxIterations int
	memory        int
	gradTol       float64
	factr         float64
	maxLineSearch int
}

// WithInitialGuess sets the starting matrix. nil means the zero matrix.
// The shape is checked by Solve, not here: a wrong shape is a recoverable
// input problem, not a programmer error.
func WithInitialGuess(m mat.Matrix) Option {
	return func(o *Options) { o.initialGuess = m }
}

// WithLogger routes diagnostics to l. nil restores the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

// WithVerbose logs the fit summary (estimate, status, gradient) at Info.
func WithVerbose(v bool) Option {
	return func(o *Options) { o.verbose = v }
}

// WithMaxIterations caps the number of major iterations.
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic(panicMaxIterations)
	}

	return func(o *Options) { o.maxIterations = n }
}

// WithMemory sets the L-BFGS history length.
func WithMemory(m int) Option {
	if m <= 0 {
		panic(panicMemory)
	}

	return func(o *Options) { o.memory = m }
}

// WithGradientTolerance sets the projected-gradient tolerance (pgtol).
func WithGradientTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicGradTol)
	}

	return func(o *Options) { o.gradTol = tol }
}

// WithFactr sets the relative-reduction factor; the test is
// (f_k − f_{k+1}) ≤ factr·ε·max(|f_k|, |f_{k+1}|, 1).
func WithFactr(factr float64) Option {
	if !(factr > 0) || math.IsInf(factr, 0) {
		panic(panicFactr)
	}

	return func(o *Options) { o.factr = factr }
}

// WithMaxLineSearch caps the backtracking steps of one line search.
func WithMaxLineSearch(n int) Option {
	if n <= 0 {
		panic(panicMaxLineSearch)
	}

	return func(o *Options) { o.maxLineSearch = n }
}

// gatherOptions applies user setters on top of the defaults, in order
// (last writer wins).
func gatherOptions(user ...Option) Options {
	o := Options{
		logger:        zap.NewNop(),
		verbose:       DefaultVerbose,
		maxIterations: DefaultMaxIterations,
		memory:        DefaultMemory,
		gradTol:       DefaultGradientTolerance,
		factr:         DefaultFactr,
		maxLineSearch: DefaultMaxLineSearch,
	}
	for _, set := range user {
		set(&o)
	}

	return o
}

// settings maps Options onto the minimiser configuration.
func (o Options) settings() lbfgsb.Settings {
	return lbfgsb.Settings{
		Memory:             o.memory,
		MaxIterations:      o.maxIterations,
		MaxFuncEvaluations: max(o.maxIterations, lbfgsb.DefaultMaxFuncEvaluations),
		GradientTolerance:  o.gradTol,
		Factr:              o.factr,
		MaxLineSearch:      o.maxLineSearch,
		Logger:             o.logger.Named("lbfgsb"),
	}
}
