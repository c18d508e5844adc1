// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldl

// LSolve overwrites x with L⁻¹x.  The unit diagonal is implicit, so each
// column only scatters its subdiagonal entries forward.
//
// Subroutine lsolve (ldl_lsolve)
func (f *Factor) LSolve(x []float64) {
	if len(x) < f.N {
		panic("bound check error")
	}
	for j := 0; j < f.N; j++ {
		xj := x[j]
		for p, pend := f.P[j]+1, f.P[j]+f.Nz[j]; p < pend; p++ {
			x[f.I[p]] -= f.X[p] * xj
		}
	}
}

// DSolve overwrites x with D⁻¹x.
//
// Subroutine dsolve (ldl_dsolve)
func (f *Factor) DSolve(x []float64) {
	if len(x) < f.N {
		panic("bound check error")
	}
	for j := 0; j < f.N; j++ {
		x[j] /= f.X[f.P[j]]
	}
}

// LTSolve overwrites x with L⁻ᵀx.
//
// Subroutine ltsolve (ldl_ltsolve)
func (f *Factor) LTSolve(x []float64) {
	if len(x) < f.N {
		panic("bound check error")
	}
	for j := f.N - 1; j >= 0; j-- {
		xj := x[j]
		for p, pend := f.P[j]+1, f.P[j]+f.Nz[j]; p < pend; p++ {
			xj -= f.X[p] * x[f.I[p]]
		}
		x[j] = xj
	}
}

// Solve overwrites b with A⁻¹b where A = L·D·Lᵀ is the factored matrix.
func (f *Factor) Solve(b []float64) {
	f.LSolve(b)
	f.DSolve(b)
	f.LTSolve(b)
}
