// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ldl implements simplicial sparse LDLᵀ factorization of symmetric
// positive-definite matrices, triangular solves with the resulting factor,
// and dense interop with gonum for reference computations.
//
// The factor layout is shared with package updown, which modifies a factor
// in place under low-rank perturbations of the original matrix.
package ldl

import (
	"errors"
)

// Sparse is a compressed-column matrix of shape NRow × NCol.
//
// Column j occupies the slots P[j] .. P[j+1]-1 of I and X when the matrix
// is packed (Nz == nil).  When Nz is non-nil the matrix is unpacked and
// column j holds Nz[j] entries starting at P[j]; the remaining slots up to
// P[j+1] are unused capacity.  Row indices are sorted ascending within a
// column and duplicates are not allowed.
type Sparse struct {
	NRow, NCol int
	P          []int     // column offsets, length NCol+1
	I          []int     // row indices
	X          []float64 // numerical values
	Nz         []int     // per-column entry counts, nil when packed
}

// Packed reports whether the matrix is stored without per-column slack.
func (a *Sparse) Packed() bool { return a.Nz == nil }

// ColRange returns the half-open slot range [p, pend) of column j.
func (a *Sparse) ColRange(j int) (p, pend int) {
	p = a.P[j]
	if a.Nz != nil {
		return p, p + a.Nz[j]
	}
	return p, a.P[j+1]
}

// Check validates the structural invariants of the matrix.
func (a *Sparse) Check() (err error) {
	switch {
	case a.NRow < 0 || a.NCol < 0:
		err = errors.New("matrix shape must not be negative")
	case len(a.P) != a.NCol+1:
		err = errors.New("column offsets size must equal to ncol+1")
	case a.Nz != nil && len(a.Nz) != a.NCol:
		err = errors.New("column counts size must equal to ncol")
	case len(a.I) < a.P[a.NCol] || len(a.X) < a.P[a.NCol]:
		err = errors.New("row index or value storage smaller than offsets imply")
	}
	if err != nil {
		return
	}
	for j := 0; j < a.NCol; j++ {
		if a.P[j] > a.P[j+1] {
			return errors.New("column offsets must be monotone")
		}
		p, pend := a.ColRange(j)
		if pend > a.P[j+1] {
			return errors.New("column count exceeds column capacity")
		}
		for last := -1; p < pend; p++ {
			i := a.I[p]
			if i < 0 || i >= a.NRow {
				return errors.New("row index out of range")
			}
			if i <= last {
				return errors.New("row indices must be sorted and distinct")
			}
			last = i
		}
	}
	return nil
}
