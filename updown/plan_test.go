// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/sparseldl/ldl"
)

// branchFactor builds a 5-column factor whose elimination tree merges
// two leaves at column 2:   0 → 2 ← 1,  2 → 3 → 4.
func branchFactor(t *testing.T) *ldl.Factor {
	t.Helper()
	a := mat.NewSymDense(5, nil)
	for i := 0; i < 5; i++ {
		a.SetSym(i, i, 4)
	}
	a.SetSym(0, 2, -1)
	a.SetSym(1, 2, -1)
	a.SetSym(2, 3, -1)
	a.SetSym(3, 4, -1)
	f := mustFactor(t, a, 0)
	require.Equal(t, 2, f.Parent(0))
	require.Equal(t, 2, f.Parent(1))
	require.Equal(t, 3, f.Parent(2))
	require.Equal(t, 4, f.Parent(3))
	return f
}

func TestPlanMergesPaths(t *testing.T) {

	f := branchFactor(t)
	c := updMatrix(5, []entry{{0, 1}}, []entry{{1, 1}})

	plan := buildPlan(f, c, 2)
	require.Len(t, plan, 5)

	// leaves in depth-first order
	require.Equal(t, 0, plan[0].CCol)
	require.Equal(t, 1, plan[1].CCol)

	// two rank-1 segments below the junction, one rank-2 above it
	require.Equal(t, Path{Start: 0, End: 0, WFirst: 0, Rank: 1, CCol: -1}, plan[2])
	require.Equal(t, Path{Start: 1, End: 1, WFirst: 1, Rank: 1, CCol: -1}, plan[3])
	require.Equal(t, Path{Start: 2, End: 4, WFirst: 0, Rank: 2, CCol: -1}, plan[4])
}

func TestPlanSplitsAtInteriorStart(t *testing.T) {

	// the second column starts at column 3, in the middle of the first
	// column's path; the shared tail becomes its own rank-2 segment
	f := branchFactor(t)
	c := updMatrix(5, []entry{{0, 1}}, []entry{{3, 1}})

	plan := buildPlan(f, c, 2)
	require.Len(t, plan, 4)

	// depth-first numbering hands the workspace column 0 to the column
	// anchored at the junction and column 1 to the deeper leaf
	require.Equal(t, 1, plan[0].CCol)
	require.Equal(t, 0, plan[1].CCol)
	require.Equal(t, Path{Start: 0, End: 2, WFirst: 1, Rank: 1, CCol: -1}, plan[2])
	require.Equal(t, Path{Start: 3, End: 4, WFirst: 0, Rank: 2, CCol: -1}, plan[3])
}

func TestPlanDisjointForest(t *testing.T) {

	// diagonal matrix: every path is a single root column
	a := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		a.SetSym(i, i, 1)
	}
	f := mustFactor(t, a, 0)
	c := updMatrix(3, []entry{{2, 1}}, []entry{{0, 1}})

	plan := buildPlan(f, c, 2)
	require.Len(t, plan, 4)
	// depth-first numbering follows ascending start columns, so the
	// second C column scatters into the first workspace column
	require.Equal(t, 1, plan[0].CCol)
	require.Equal(t, 0, plan[1].CCol)
	require.Equal(t, Path{Start: 0, End: 0, WFirst: 0, Rank: 1, CCol: -1}, plan[2])
	require.Equal(t, Path{Start: 2, End: 2, WFirst: 1, Rank: 1, CCol: -1}, plan[3])
}

func TestCheckPlan(t *testing.T) {

	require.Error(t, checkPlan([]Path{}, 1, 1, 3, 1))

	leaf := Path{Start: 0, End: 0, WFirst: 0, Rank: 1, CCol: 0}
	require.NoError(t, checkPlan([]Path{leaf,
		{Start: 0, End: 2, WFirst: 0, Rank: 1}}, 1, 1, 3, 1))
	require.Error(t, checkPlan([]Path{leaf,
		{Start: 2, End: 0, WFirst: 0, Rank: 1}}, 1, 1, 3, 1))
	require.Error(t, checkPlan([]Path{leaf,
		{Start: 0, End: 2, WFirst: 1, Rank: 1}}, 1, 1, 3, 1))
	require.Error(t, checkPlan([]Path{{CCol: 2},
		{Start: 0, End: 2, WFirst: 0, Rank: 1}}, 1, 1, 3, 1))
}

func TestApplyPlanExternal(t *testing.T) {

	// the trivial identity update driven by a hand-written plan
	a := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		a.SetSym(i, i, 1)
	}
	f := mustFactor(t, a, 0)

	c := updMatrix(3, []entry{{0, 1}})
	md, err := (&Modification{Sign: Update, C: c}).New(nil)
	require.NoError(t, err)

	plan := []Path{
		{Start: 0, End: 0, WFirst: 0, Rank: 1, CCol: 0},
		{Start: 0, End: 0, WFirst: 0, Rank: 1, CCol: -1},
	}
	res, err := md.ApplyPlan(f, plan, md.Init())
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, 2.0, f.Diag(0))

	_, err = md.ApplyPlan(f, []Path{}, md.Init())
	require.Error(t, err)
}

func TestModificationValidation(t *testing.T) {

	n := 3
	c := updMatrix(n, []entry{{0, 1}})

	_, err := (&Modification{Sign: Update}).New(nil)
	require.Error(t, err)

	_, err = (&Modification{Sign: Update, C: c, Rank: 9}).New(nil)
	require.Error(t, err)

	_, err = (&Modification{Sign: Update, C: c, Rank: 2}).New(nil)
	require.Error(t, err)

	_, err = (&Modification{Sign: Update, C: c, DBound: -1}).New(nil)
	require.Error(t, err)

	_, err = (&Modification{Sign: Update, C: c, Mask: []int{0}}).New(nil)
	require.Error(t, err)

	empty := &ldl.Sparse{NRow: n, NCol: 1, P: []int{0, 0}}
	_, err = (&Modification{Sign: Update, C: empty}).New(nil)
	require.Error(t, err)

	d := updMatrix(n, []entry{{1, 1}})
	_, err = (&Modification{C: c, D: d}).New(nil)
	require.Error(t, err)

	md, err := (&Modification{Sign: Downdate, C: c}).New(nil)
	require.NoError(t, err)
	require.Equal(t, 1, md.wdim)
}
