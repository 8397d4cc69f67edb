// SPDX-License-Identifier: MIT

// Package core defines the data model shared by every estimation package:
// the immutable ObservationSet and the sentinel error taxonomy.
//
// 🚀 What is an observation?
//
//	Observation i is one locus: an observed effect vector θᵢ (length d) and
//	its known sampling covariance Sᵢ (d×d, symmetric). The model is
//
//	  θᵢ ~ Normal(0, V + Sᵢ)
//
//	with V the unknown covariance shared by all observations.
//
// ✨ Key properties of ObservationSet
//
//   - Validated once, at construction, in a fixed order (missing effects,
//     empty set, dimensions, finiteness, symmetry), before any numeric work.
//   - Inputs are copied; the set is never mutated afterwards and is safe for
//     any number of concurrent readers.
//   - Without(lo, hi) returns the set with a half-open index window removed,
//     sharing per-observation storage. This is the jackknife primitive.
//
// Errors (errors.go) are package-level sentinels matched with errors.Is.
// DimensionMismatch, NaNInf and Asymmetry alias the matrix package sentinels.
package core
