// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package updown modifies a simplicial sparse LDLᵀ factorization in place
// under a low-rank symmetric perturbation of the factored matrix:
//
//	Lnew·Dnew·Lnewᵀ = L·D·Lᵀ + C·Cᵀ   (update)
//	Lnew·Dnew·Lnewᵀ = L·D·Lᵀ − C·Cᵀ   (downdate)
//	Lnew·Dnew·Lnewᵀ = L·D·Lᵀ + C·Cᵀ − D·Dᵀ
//
// where C (and D) are sparse n-by-r matrices with r at most 8.  The
// sparsity pattern of the factor is never changed; only the numerical
// values of L and the diagonal D are rewritten, along the elimination
// tree paths reached by the columns of C.  The method is the stable
// rank-1 modification of Davis and Hager (Method C1), applied column by
// column and fused over adjacent path columns that share a pattern.
package updown

import "math"

const (
	zero = 0.0
	one  = 1.0

	// maxRank bounds the number of update columns applied in one pass.
	maxRank = 8
)

// Sign selects the polarity of a single-polarity modification.
type Sign int

const (
	// Update adds C·Cᵀ to the factored matrix.
	Update Sign = iota
	// Downdate subtracts C·Cᵀ from the factored matrix.
	Downdate
)

// rvec fixes the rank of a kernel instance at compile time.  The loops
// over a value of this type have constant bounds, so each instantiation
// is a fully unrolled rank-k kernel.
type rvec interface {
	[1]float64 | [2]float64 | [3]float64 | [4]float64 |
		[5]float64 | [6]float64 | [7]float64 | [8]float64
}

// sweepCtx carries the per-call state shared by every kernel instance:
// the diagonal bound policy and the running counters reported in Result.
type sweepCtx struct {
	dbound    float64
	useDBound bool

	notPosDef int // columns whose new diagonal was not strictly positive
	cols      int // columns swept
	dual      int // 2-column fusions taken
	quad      int // 4-column fusions taken
}

// clamp applies the diagonal bound to a freshly recomputed D(j,j) and
// records a violation when the value is not strictly positive or is not
// finite.  Detection happens once per column, after the full rank-k
// recurrence.
func (ctx *sweepCtx) clamp(d float64) float64 {
	if !(d > zero) || math.IsInf(d, 1) {
		ctx.notPosDef++
	}
	if ctx.useDBound {
		d = math.Max(d, ctx.dbound)
	}
	return d
}
