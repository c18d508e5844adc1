// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldl

import "errors"

// Factorize computes the numeric LDLᵀ factorization of a using the
// pattern predicted by the analysis.  The factorization is up-looking:
// row k of L is obtained from a sparse triangular solve against the
// first k columns, then appended to the columns it touches.
//
// A zero pivot stops the factorization with an error; a negative pivot is
// kept (the factor is then that of an indefinite matrix, which the caller
// may accept or reject).
//
// Subroutine factorize (ldl_numeric)
func (s *Symbolic) Factorize(a *Sparse) (*Factor, error) {
	if a == nil || a.NRow != s.n || a.NCol != s.n {
		return nil, errors.New("matrix shape not match analysis")
	}

	n := s.n
	f := s.NewFactor()
	y := make([]float64, n)
	flag := make([]int, n)
	pattern := make([]int, n)

	for k := 0; k < n; k++ {
		top := n
		flag[k] = k
		for p, pend := a.ColRange(k); p < pend; p++ {
			i := a.I[p]
			if i > k {
				continue
			}
			y[i] += a.X[p]
			length := 0
			for ; flag[i] != k; i = s.Parent[i] {
				pattern[length] = i
				length++
				flag[i] = k
			}
			// the walk found the path in leaf-to-root order;
			// prepend it reversed so pattern[top:] is topological
			for length > 0 {
				length--
				top--
				pattern[top] = pattern[length]
			}
		}

		dk := y[k]
		y[k] = 0
		for ; top < n; top++ {
			i := pattern[top]
			yi := y[i]
			y[i] = 0
			p, pend := f.P[i]+1, f.P[i]+f.Nz[i]
			for ; p < pend; p++ {
				y[f.I[p]] -= f.X[p] * yi
			}
			lki := yi / f.X[f.P[i]]
			dk -= lki * yi
			f.I[pend] = k
			f.X[pend] = lki
			f.Nz[i]++
		}

		if dk == 0 {
			return nil, errors.New("zero pivot encountered")
		}
		f.X[f.P[k]] = dk
	}
	return f, nil
}

// Factorize analyzes and factorizes a in one call.
func Factorize(a *Sparse) (*Factor, error) {
	s, err := Analyze(a)
	if err != nil {
		return nil, err
	}
	return s.Factorize(a)
}
