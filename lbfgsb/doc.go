// Package lbfgsb minimises a smooth function subject to per-variable box
// constraints l ≤ x ≤ u with a limited-memory quasi-Newton method.
//
// Each major iteration:
//
//  1. computes the projected gradient P(x − g) − x and stops when its
//     infinity norm falls below GradientTolerance;
//  2. fixes variables that sit on a bound with the gradient pushing outward,
//     and builds a search direction for the free variables with the L-BFGS
//     two-loop recursion over the last Memory correction pairs (sₖ, yₖ);
//  3. backtracks along the projected path x(α) = P(x + α·d) until the Armijo
//     condition f(x(α)) ≤ f(x) + c₁·gᵀ(x(α) − x) holds;
//  4. stops on a relative reduction of f below Factr·ε (machine epsilon).
//
// Trial points where the objective is not finite (+Inf, NaN) are rejected by
// the line search, so callers can signal "outside the domain" by returning
// +Inf. Errors returned by the objective abort the run and are passed through.
//
// Termination is reported with the gonum optimize.Status vocabulary together
// with a human-readable message; iteration and evaluation counters use
// optimize.Stats.
package lbfgsb
