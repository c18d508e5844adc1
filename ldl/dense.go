// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldl

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const one = 1.0

// Reconstruct assembles the dense product L·D·Lᵀ of the factor.
// It is the reference arithmetic for residual checks and costs
// O(Σⱼ nnz(L(:,j))²), acceptable for the matrix sizes it is meant for.
func (f *Factor) Reconstruct() *mat.SymDense {
	a := mat.NewSymDense(f.N, nil)
	for j := 0; j < f.N; j++ {
		p, pend := f.P[j], f.P[j]+f.Nz[j]
		d := f.X[p]
		// column j of L with its implicit unit diagonal
		for p1 := p; p1 < pend; p1++ {
			i1 := f.I[p1]
			v1 := one
			if p1 > p {
				v1 = f.X[p1]
			}
			for p2 := p1; p2 < pend; p2++ {
				i2 := f.I[p2]
				v2 := one
				if p2 > p {
					v2 = f.X[p2]
				}
				a.SetSym(i1, i2, a.At(i1, i2)+d*v1*v2)
			}
		}
	}
	return a
}

// FromSym converts a dense symmetric matrix to full compressed-column
// storage.  Off-diagonal entries of magnitude ≤ drop are omitted from the
// pattern; diagonal entries are always kept so the matrix stays usable as
// factorization input.  Pass drop < 0 to keep explicit zeros.
func FromSym(s mat.Symmetric, drop float64) *Sparse {
	n := s.SymmetricDim()
	a := &Sparse{NRow: n, NCol: n, P: make([]int, n+1)}
	for j := 0; j < n; j++ {
		a.P[j+1] = a.P[j]
		for i := 0; i < n; i++ {
			if v := s.At(i, j); i == j || math.Abs(v) > drop {
				a.I = append(a.I, i)
				a.X = append(a.X, v)
				a.P[j+1]++
			}
		}
	}
	return a
}

// Residual returns ‖L·D·Lᵀ − a‖F.
func Residual(f *Factor, a mat.Symmetric) float64 {
	var diff mat.Dense
	diff.Sub(f.Reconstruct(), a)
	return mat.Norm(&diff, 2)
}
