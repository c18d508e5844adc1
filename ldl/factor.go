// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldl

import "slices"

// Factor holds a simplicial LDLᵀ factorization with unit diagonal.
//
// Column j of L occupies the slots P[j] .. P[j]+Nz[j]-1 of I and X.  The
// first slot is the diagonal: I[P[j]] == j and X[P[j]] holds D(j,j).  The
// remaining slots are the strictly subdiagonal entries of L, row indices
// ascending.  The unit diagonal of L itself is not stored.
//
// For every non-root column with Nz[j] > 1 the first off-diagonal row
// index I[P[j]+1] is the parent of j in the elimination tree.
type Factor struct {
	N  int
	P  []int     // column offsets, length N+1 (slack allowed per column)
	I  []int     // row indices, diagonal first
	X  []float64 // D(j,j) followed by subdiagonal values of L
	Nz []int     // entries per column, diagonal included (≥ 1)
}

// Diag returns D(j,j).
func (f *Factor) Diag(j int) float64 { return f.X[f.P[j]] }

// Parent returns the elimination tree parent of column j, or -1 for a root.
func (f *Factor) Parent(j int) int {
	if f.Nz[j] > 1 {
		return f.I[f.P[j]+1]
	}
	return -1
}

// Clone returns a deep copy of the factor.
func (f *Factor) Clone() *Factor {
	return &Factor{
		N:  f.N,
		P:  slices.Clone(f.P),
		I:  slices.Clone(f.I),
		X:  slices.Clone(f.X),
		Nz: slices.Clone(f.Nz),
	}
}

// SamePattern reports whether g stores the same sparsity pattern as f.
// Only the slots actually occupied by columns are compared.
func (f *Factor) SamePattern(g *Factor) bool {
	if f.N != g.N || !slices.Equal(f.P, g.P) || !slices.Equal(f.Nz, g.Nz) {
		return false
	}
	for j := 0; j < f.N; j++ {
		p, pend := f.P[j], f.P[j]+f.Nz[j]
		if !slices.Equal(f.I[p:pend], g.I[p:pend]) {
			return false
		}
	}
	return true
}
