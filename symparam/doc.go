// Package symparam maps symmetric d×d matrices to and from their minimal
// free-parameter vector, and generates the box constraints that go with it.
//
// 🚀 What is the reduced parameterization?
//
//	A symmetric matrix has only d·(d+1)/2 independent entries. The codec
//	walks the upper triangle row by row, diagonal included once:
//
//	  ┌ a b c ┐
//	  │ b d e │   ⇄   [a, b, c, d, e, f]
//	  └ c e f ┘
//
// ✨ Key features:
//   - Encode / Decode with an exact round-trip law: Decode(Encode(M), d) == M
//   - FoldGradient: folds an elementwise d×d derivative into the reduced
//     gradient. V[i,j] and V[j,i] are the same free parameter, so off-diagonal
//     partials are summed from both positions; diagonal partials are taken once.
//   - Bounds: [0, +Inf) for diagonal positions (variances), (−Inf, +Inf) for
//     off-diagonal positions (covariances), aligned index-for-index with Encode.
//
// The box constraints do not make a decoded matrix positive semidefinite; they
// only keep variances non-negative.
package symparam
