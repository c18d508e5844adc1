// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldl

import "errors"

// Symbolic holds the result of the fill-pattern analysis of a symmetric
// matrix: the elimination tree and the subdiagonal count of every column
// of the factor.
type Symbolic struct {
	n      int
	Parent []int // elimination tree, -1 for roots
	Lnz    []int // strictly subdiagonal entries per factor column
}

// Analyze computes the elimination tree and column counts of the LDLᵀ
// factor of a.  Only the upper triangle of a is read; entries below the
// diagonal are ignored, so both upper-triangular and full symmetric
// storage are accepted.  Explicit zeros contribute to the pattern, which
// lets a caller pad the factor with the fill of a later modification.
//
// Subroutine analyze (ldl_symbolic)
func Analyze(a *Sparse) (*Symbolic, error) {
	switch {
	case a == nil:
		return nil, errors.New("matrix is required")
	case a.NRow != a.NCol:
		return nil, errors.New("matrix must be square")
	}
	if err := a.Check(); err != nil {
		return nil, err
	}

	n := a.NRow
	s := &Symbolic{
		n:      n,
		Parent: make([]int, n),
		Lnz:    make([]int, n),
	}
	flag := make([]int, n)

	for k := 0; k < n; k++ {
		s.Parent[k] = -1
		flag[k] = k
		for p, pend := a.ColRange(k); p < pend; p++ {
			// follow the path from each entry of row k up to the root
			// of the partial etree, stopping at already-marked nodes
			for i := a.I[p]; i < k && flag[i] != k; i = s.Parent[i] {
				if s.Parent[i] == -1 {
					s.Parent[i] = k
				}
				s.Lnz[i]++
				flag[i] = k
			}
		}
	}
	return s, nil
}

// NewFactor allocates an empty factor shaped by the analysis: every column
// holds its diagonal slot plus capacity for the predicted subdiagonal
// entries.  Values are zero and Nz[j] == 1 until Factorize fills them.
func (s *Symbolic) NewFactor() *Factor {
	n := s.n
	f := &Factor{
		N:  n,
		P:  make([]int, n+1),
		Nz: make([]int, n),
	}
	for j := 0; j < n; j++ {
		f.P[j+1] = f.P[j] + s.Lnz[j] + 1
	}
	nz := f.P[n]
	f.I = make([]int, nz)
	f.X = make([]float64, nz)
	for j := 0; j < n; j++ {
		f.I[f.P[j]] = j
		f.Nz[j] = 1
	}
	return f
}
