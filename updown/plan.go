// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import (
	"errors"

	"github.com/curioloop/sparseldl/ldl"
)

// buildPlan computes the path plan of a rank-r modification from the
// factor's elimination tree and the first row index of every column of C.
//
// The union of the tree paths from each starting column to its root forms
// a subtree.  The subtree is cut into segments at the starting columns
// and at every merge node, so each segment sweeps a constant set of
// workspace columns.  Leaf columns are numbered by a depth-first
// traversal of the segment tree, which makes the active set of every
// segment a contiguous workspace range [WFirst, WFirst+Rank).  Interior
// descriptors are emitted ascending by starting column; ancestors have
// larger column indices than descendants in an elimination tree, so that
// order processes descendant segments first.
//
// Subroutine buildPlan (cholmod_updown symbolic stage)
func buildPlan(f *ldl.Factor, c *ldl.Sparse, rank int) []Path {
	n := f.N

	starts := make([]int, rank)
	for k := range starts {
		p, _ := c.ColRange(k)
		starts[k] = c.I[p]
	}

	// union of the etree paths, and the nodes that head a segment
	onPath := make([]bool, n)
	head := make([]bool, n)
	for _, s := range starts {
		head[s] = true
		for j := s; j != -1 && !onPath[j]; j = f.Parent(j) {
			onPath[j] = true
		}
	}
	indeg := make([]int, n)
	for j := 0; j < n; j++ {
		if onPath[j] {
			if q := f.Parent(j); q != -1 {
				indeg[q]++
			}
		}
	}
	for j := 0; j < n; j++ {
		if onPath[j] && indeg[j] >= 2 {
			head[j] = true
		}
	}

	// cut the union into segments of constant active set
	type segment struct {
		start, end  int
		parent      int // head node of the parent segment, or -1
		wfirst, cnt int
	}
	segOf := make([]int, n)
	var segs []segment
	for j := 0; j < n; j++ {
		if !onPath[j] || !head[j] {
			continue
		}
		end := j
		q := f.Parent(end)
		for q != -1 && !head[q] {
			end = q
			q = f.Parent(end)
		}
		segOf[j] = len(segs)
		segs = append(segs, segment{start: j, end: end, parent: q})
	}

	// segment tree; ids ascend with the start column, so a parent id is
	// always larger than every id in its subtree
	kids := make([][]int, len(segs))
	var roots []int
	segCols := make([][]int, len(segs))
	for id := range segs {
		if q := segs[id].parent; q != -1 {
			pid := segOf[q]
			kids[pid] = append(kids[pid], id)
		} else {
			roots = append(roots, id)
		}
	}
	for k, s := range starts {
		id := segOf[s]
		segCols[id] = append(segCols[id], k)
	}

	// depth-first leaf numbering: a segment's own columns first, then its
	// child subtrees, so every subtree occupies a contiguous range
	order := make([]int, 0, rank)
	stack := make([]int, 0, len(segs))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		segs[id].wfirst = len(order)
		order = append(order, segCols[id]...)
		for i := len(kids[id]) - 1; i >= 0; i-- {
			stack = append(stack, kids[id][i])
		}
	}

	// active-set sizes accumulate bottom-up (child ids precede parents)
	for id := range segs {
		segs[id].cnt += len(segCols[id])
		if q := segs[id].parent; q != -1 {
			segs[segOf[q]].cnt += segs[id].cnt
		}
	}

	plan := make([]Path, 0, rank+len(segs))
	for i, k := range order {
		id := segOf[starts[k]]
		plan = append(plan, Path{
			Start: starts[k], End: segs[id].end,
			WFirst: i, Rank: 1, CCol: k,
		})
	}
	for _, s := range segs {
		plan = append(plan, Path{
			Start: s.start, End: s.end,
			WFirst: s.wfirst, Rank: s.cnt, CCol: -1,
		})
	}
	return plan
}

// checkPlan validates an externally produced path plan against the
// modification geometry and the factor dimension.
func checkPlan(plan []Path, rank, wdim, n, ncol int) (err error) {
	if len(plan) < rank {
		return errors.New("plan must hold one leaf descriptor per update column")
	}
	seen := make([]bool, ncol)
	for _, pt := range plan[:rank] {
		switch {
		case pt.CCol < 0 || pt.CCol >= ncol:
			err = errors.New("leaf source column out of range")
		case seen[pt.CCol]:
			err = errors.New("leaf source column duplicated")
		default:
			seen[pt.CCol] = true
			continue
		}
		return
	}
	for _, pt := range plan[rank:] {
		switch {
		case pt.Start < 0 || pt.Start > pt.End || pt.End >= n:
			err = errors.New("subpath column range is invalid")
		case pt.Rank < 1 || pt.WFirst < 0 || pt.WFirst+pt.Rank > wdim:
			err = errors.New("subpath workspace range exceeds width")
		default:
			continue
		}
		return
	}
	return nil
}
