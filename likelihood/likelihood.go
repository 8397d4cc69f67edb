// SPDX-License-Identifier: MIT

package likelihood

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/varcomp/core"
	"github.com/katalvlaran/varcomp/symparam"
)

// log2Pi is ln(2π).
var log2Pi = math.Log(2 * math.Pi)

// Evaluator computes the negative log-likelihood and its reduced gradient for
// one ObservationSet. Scratch matrices are allocated once and reused across
// calls, so an Evaluator is NOT safe for concurrent use; create one per
// goroutine (they are cheap).
type Evaluator struct {
	obs *core.ObservationSet
	d   int

	v      *mat.SymDense // decoded candidate V
	sigma  *mat.SymDense // Sᵢ + V
	inv    *mat.SymDense // Σᵢ⁻¹
	invSum *mat.SymDense // Σᵢ Σᵢ⁻¹
	outer  *mat.SymDense // Σᵢ aᵢaᵢᵀ
	grad   *mat.SymDense // dense ∂logL/∂V
	a      *mat.VecDense // Σᵢ⁻¹θᵢ

	chol mat.Cholesky
	lu   mat.LU
}

// NewEvaluator prepares an Evaluator for obs. The set may be empty (a
// jackknife replicate of a single observation); its dimension still fixes the
// parameter length.
func NewEvaluator(obs *core.ObservationSet) (*Evaluator, error) {
	if obs == nil {
		return nil, core.ErrEmptyObservations
	}
	d := obs.Dim()

	return &Evaluator{
		obs:    obs,
		d:      d,
		v:      mat.NewSymDense(d, nil),
		sigma:  mat.NewSymDense(d, nil),
		inv:    mat.NewSymDense(d, nil),
		invSum: mat.NewSymDense(d, nil),
		outer:  mat.NewSymDense(d, nil),
		grad:   mat.NewSymDense(d, nil),
		a:      mat.NewVecDense(d, nil),
	}, nil
}

// Dim returns the side d of the candidate matrix.
func (e *Evaluator) Dim() int { return e.d }

// NumParams returns d·(d+1)/2.
func (e *Evaluator) NumParams() int { return symparam.NumParams(e.d) }

// Eval returns −log L at the reduced parameters and, when grad is non-nil,
// writes −∂log L/∂params into grad (len(grad) must equal NumParams()).
//
// Errors:
//   - core.ErrDimensionMismatch  (params or grad of the wrong length).
//   - core.ErrNaNInf             (non-finite parameter).
//   - core.ErrNumericalSingularity (some Sᵢ+V is not invertible).
//   - core.ErrNotPositiveDefinite  (some Sᵢ+V is invertible but indefinite).
//
// Complexity: O(N·d³).
func (e *Evaluator) Eval(params, grad []float64) (float64, error) {
	k := symparam.NumParams(e.d)
	if len(params) != k {
		return 0, errors.Wrapf(core.ErrDimensionMismatch, "params has length %d, want %d", len(params), k)
	}
	if grad != nil && len(grad) != k {
		return 0, errors.Wrapf(core.ErrDimensionMismatch, "grad has length %d, want %d", len(grad), k)
	}
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, errors.Wrapf(core.ErrNaNInf, "params[%d]", i)
		}
	}
	symparam.DecodeInto(e.v, params)

	logL, err := e.accumulate(grad != nil)
	if err != nil {
		return 0, err
	}
	if grad != nil {
		// dense gradient: −½ Σ Σᵢ⁻¹ + ½ Σ aᵢaᵢᵀ
		e.grad.ScaleSym(-0.5, e.invSum)
		e.outer.ScaleSym(0.5, e.outer)
		e.grad.AddSym(e.grad, e.outer)
		symparam.FoldGradient(e.grad, grad)
		for i := range grad {
			grad[i] = -grad[i]
		}
	}

	return -logL, nil
}

// accumulate runs the per-observation loop and returns the positive log L.
// When withGrad is set it also fills invSum and outer.
func (e *Evaluator) accumulate(withGrad bool) (float64, error) {
	if withGrad {
		e.invSum.Zero()
		e.outer.Zero()
	}

	var (
		logL     float64
		constant = -0.5 * float64(e.d) * log2Pi
		ob       core.Observation
		err      error
	)
	for i := 0; i < e.obs.Len(); i++ {
		ob = e.obs.At(i)
		e.sigma.AddSym(ob.S, e.v)
		if err = e.factorize(); err != nil {
			return 0, errors.Wrapf(err, "observation %d", i)
		}

		// aᵢ = Σᵢ⁻¹θᵢ ; θᵢᵀΣᵢ⁻¹θᵢ = tr(θᵢθᵢᵀΣᵢ⁻¹)
		if err = e.chol.SolveVecTo(e.a, ob.Theta); err != nil {
			return 0, errors.Wrapf(core.ErrNumericalSingularity, "observation %d: %v", i, err)
		}
		logL += constant - 0.5*e.chol.LogDet() - 0.5*mat.Dot(ob.Theta, e.a)

		if withGrad {
			if err = e.chol.InverseTo(e.inv); err != nil {
				return 0, errors.Wrapf(core.ErrNumericalSingularity, "observation %d: %v", i, err)
			}
			e.invSum.AddSym(e.invSum, e.inv)
			e.outer.SymRankOne(e.outer, 1, e.a)
		}
	}

	return logL, nil
}

// factorize Cholesky-factorizes e.sigma and classifies failures. A failed or
// ill-conditioned Cholesky is re-examined through LU: a reciprocal condition
// number below machine tolerance means Σ is singular, anything else means Σ
// is invertible but indefinite.
func (e *Evaluator) factorize() error {
	if e.chol.Factorize(e.sigma) {
		if c := e.chol.Cond(); c <= mat.ConditionTolerance && !math.IsNaN(c) {
			return nil
		}

		return errors.Wrapf(core.ErrNumericalSingularity, "condition number %g", e.chol.Cond())
	}

	e.lu.Factorize(e.sigma)
	if c := e.lu.Cond(); c > mat.ConditionTolerance || math.IsNaN(c) || math.IsInf(c, 0) {
		return errors.Wrapf(core.ErrNumericalSingularity, "condition number %g", c)
	}

	return core.ErrNotPositiveDefinite
}

// NegLogLikelihoodAndGradient is the one-shot form of Evaluator.Eval: it
// returns −log L and −∇log L (reduced form) for params over obs. It has no
// side effects on its inputs.
func NegLogLikelihoodAndGradient(params []float64, obs *core.ObservationSet) (float64, []float64, error) {
	e, err := NewEvaluator(obs)
	if err != nil {
		return 0, nil, err
	}
	grad := make([]float64, e.NumParams())
	f, err := e.Eval(params, grad)
	if err != nil {
		return 0, nil, err
	}

	return f, grad, nil
}

// LogLikelihood returns the positive log L of the dense candidate v.
func LogLikelihood(v mat.Symmetric, obs *core.ObservationSet) (float64, error) {
	e, err := NewEvaluator(obs)
	if err != nil {
		return 0, err
	}
	if v.SymmetricDim() != e.d {
		return 0, errors.Wrapf(core.ErrDimensionMismatch, "V is %d×%d, want %d×%d",
			v.SymmetricDim(), v.SymmetricDim(), e.d, e.d)
	}
	f, err := e.Eval(symparam.Encode(v), nil)
	if err != nil {
		return 0, err
	}

	return -f, nil
}
