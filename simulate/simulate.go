// SPDX-License-Identifier: MIT

package simulate

import (
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/katalvlaran/varcomp/core"
	"github.com/katalvlaran/varcomp/matrix"
)

// defaultSeed is used when callers pass seed 0.
const defaultSeed uint64 = 1

// psdTol is the relative tolerance on negative eigenvalues accepted as zero.
const psdTol = 1e-10

// Option configures a simulation run.
type Option func(*Options)

// Options is the resolved simulation configuration.
type Options struct {
	seed uint64
}

// WithSeed fixes the random stream. 0 selects the default seed.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.seed = seed }
}

func gatherOptions(user ...Option) Options {
	o := Options{seed: defaultSeed}
	for _, set := range user {
		set(&o)
	}
	if o.seed == 0 {
		o.seed = defaultSeed
	}

	return o
}

// sampler draws one zero-mean vector into dst.
type sampler interface {
	Rand(dst []float64) []float64
}

// Effects draws one observed effect vector per noise covariance: row i of the
// result is θ̂ᵢ = θᵢ + εᵢ with θᵢ ~ N(0, v) and εᵢ ~ N(0, s[i]).
//
// Errors:
//   - core.ErrEmptyObservations when s is empty.
//   - core.ErrDimensionMismatch when some s[i] differs in size from v.
//   - core.ErrNotPositiveDefinite when v or some s[i] is not PSD.
//
// Complexity: O(N·d³) for the per-observation factorisations.
func Effects(v mat.Symmetric, s []mat.Symmetric, opts ...Option) (*mat.Dense, error) {
	if matrix.ValidateNotNil(v) != nil {
		return nil, errors.Wrap(core.ErrDimensionMismatch, "simulate: nil V")
	}
	if len(s) == 0 {
		return nil, core.ErrEmptyObservations
	}
	o := gatherOptions(opts...)
	d := v.SymmetricDim()
	src := rand.NewSource(o.seed)

	truth, err := newSampler(v, src)
	if err != nil {
		return nil, errors.Wrap(err, "simulate: V")
	}

	out := mat.NewDense(len(s), d, nil)
	var (
		theta = make([]float64, d)
		noise = make([]float64, d)
		ns    sampler
	)
	for i, si := range s {
		if matrix.ValidateNotNil(si) != nil || si.SymmetricDim() != d {
			return nil, errors.Wrapf(core.ErrDimensionMismatch, "simulate: S[%d]", i)
		}
		if ns, err = newSampler(si, src); err != nil {
			return nil, errors.Wrapf(err, "simulate: S[%d]", i)
		}
		truth.Rand(theta)
		ns.Rand(noise)
		for j := 0; j < d; j++ {
			out.Set(i, j, theta[j]+noise[j])
		}
	}

	return out, nil
}

// Dataset draws effects with Effects and packages them with s into a
// validated observation set.
func Dataset(v mat.Symmetric, s []mat.Symmetric, opts ...Option) (*core.ObservationSet, error) {
	theta, err := Effects(v, s, opts...)
	if err != nil {
		return nil, err
	}
	noise := make([]mat.Matrix, len(s))
	for i := range s {
		noise[i] = s[i]
	}

	return core.NewObservationSet(theta, noise)
}

// IdentityNoise returns n independent d×d identity covariances.
func IdentityNoise(n, d int) []mat.Symmetric {
	return ScaledNoise(n, d, 1)
}

// ScaledNoise returns n independent d×d covariances c·I.
func ScaledNoise(n, d int, c float64) []mat.Symmetric {
	out := make([]mat.Symmetric, n)
	for i := range out {
		diag := make([]float64, d*d)
		for j := 0; j < d; j++ {
			diag[j*d+j] = c
		}
		out[i] = mat.NewSymDense(d, diag)
	}

	return out
}

// newSampler returns a zero-mean normal sampler for sigma. Positive definite
// covariances go through distmv; singular PSD ones through eigenSampler.
func newSampler(sigma mat.Symmetric, src rand.Source) (sampler, error) {
	d := sigma.SymmetricDim()
	if n, ok := distmv.NewNormal(make([]float64, d), sigma, src); ok {
		return n, nil
	}

	var eig mat.EigenSym
	if !eig.Factorize(sigma, true) {
		return nil, errors.Wrap(core.ErrNotPositiveDefinite, "eigen decomposition failed")
	}
	vals := eig.Values(nil)
	var maxAbs float64
	for _, l := range vals {
		maxAbs = math.Max(maxAbs, math.Abs(l))
	}
	sd := make([]float64, d)
	for i, l := range vals {
		if l < -psdTol*math.Max(1, maxAbs) {
			return nil, errors.Wrapf(core.ErrNotPositiveDefinite, "eigenvalue %g", l)
		}
		sd[i] = math.Sqrt(math.Max(l, 0))
	}
	var q mat.Dense
	eig.VectorsTo(&q)

	return &eigenSampler{q: &q, sd: sd, rnd: rand.New(src), z: make([]float64, d)}, nil
}

// eigenSampler draws x = Q·diag(√λ)·z with z ~ N(0, I).
type eigenSampler struct {
	q   *mat.Dense
	sd  []float64
	rnd *rand.Rand
	z   []float64
}

func (e *eigenSampler) Rand(dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(e.sd))
	}
	for i := range e.z {
		e.z[i] = e.sd[i] * e.rnd.NormFloat64()
	}
	mat.NewVecDense(len(dst), dst).MulVec(e.q, mat.NewVecDense(len(e.z), e.z))

	return dst
}
