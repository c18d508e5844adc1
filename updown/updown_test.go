// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/sparseldl/ldl"
)

// tridiag builds the n×n symmetric tridiagonal matrix with d on the
// diagonal and off beside it.
func tridiag(n int, d, off float64) *mat.SymDense {
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetSym(i, i, d)
		if i+1 < n {
			a.SetSym(i, i+1, off)
		}
	}
	return a
}

// denseSPD builds a fully dense positive-definite test matrix.
func denseSPD(n int) *mat.SymDense {
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, 1/float64(1+j-i))
		}
		a.SetSym(i, i, 4+float64(i)/10)
	}
	return a
}

type entry struct {
	i int
	v float64
}

// updMatrix assembles a sparse n×len(cols) update matrix from per-column
// entry lists (rows ascending).
func updMatrix(n int, cols ...[]entry) *ldl.Sparse {
	c := &ldl.Sparse{NRow: n, NCol: len(cols), P: make([]int, len(cols)+1)}
	for j, col := range cols {
		c.P[j+1] = c.P[j] + len(col)
		for _, e := range col {
			c.I = append(c.I, e.i)
			c.X = append(c.X, e.v)
		}
	}
	return c
}

// addRank accumulates a + Σ sgn·C(:,k)·C(:,k)ᵀ densely.
func addRank(a *mat.SymDense, c *ldl.Sparse, sgn float64) *mat.SymDense {
	n := a.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(a)
	for k := 0; k < c.NCol; k++ {
		for p, pend := c.ColRange(k); p < pend; p++ {
			for q := p; q < pend; q++ {
				i, j := c.I[p], c.I[q]
				out.SetSym(i, j, out.At(i, j)+sgn*c.X[p]*c.X[q])
			}
		}
	}
	return out
}

// snapshot records the factor pattern for the preservation checks.
type snapshot struct {
	p, i, nz []int
}

func patternOf(f *ldl.Factor) snapshot {
	return snapshot{slices.Clone(f.P), slices.Clone(f.I), slices.Clone(f.Nz)}
}

func checkInvariants(t *testing.T, f *ldl.Factor, before snapshot, w *Workspace) {
	t.Helper()
	if !slices.Equal(f.P, before.p) || !slices.Equal(f.I, before.i) || !slices.Equal(f.Nz, before.nz) {
		t.Fatal("factor pattern changed")
	}
	for i, v := range w.w {
		if v != 0 {
			t.Fatalf("workspace not clean at %d: %v", i, v)
		}
	}
	for i, v := range w.wd {
		if v != 0 {
			t.Fatalf("downdate workspace not clean at %d: %v", i, v)
		}
	}
}

func mustFactor(t *testing.T, a *mat.SymDense, drop float64) *ldl.Factor {
	t.Helper()
	f, err := ldl.Factorize(ldl.FromSym(a, drop))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func mustApply(t *testing.T, m *Modification, f *ldl.Factor) (*Result, *Workspace) {
	t.Helper()
	md, err := m.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	w := md.Init()
	return md.Apply(f, w), w
}

func TestRank1UpdateIdentity(t *testing.T) {

	a := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		a.SetSym(i, i, 1)
	}
	f := mustFactor(t, a, 0)
	before := patternOf(f)

	c := updMatrix(3, []entry{{0, 1}})
	res, w := mustApply(t, &Modification{Sign: Update, C: c}, f)

	if !res.OK || res.NotPosDef != 0 {
		t.Fatalf("unexpected failure: %+v", res)
	}
	want := []float64{2, 1, 1}
	for j, d := range want {
		if f.Diag(j) != d {
			t.Fatalf("diag %d: got %v want %v", j, f.Diag(j), d)
		}
	}
	checkInvariants(t, f, before, w)
}

func TestRank1DowndateInverse(t *testing.T) {

	a := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		a.SetSym(i, i, 1)
	}
	f := mustFactor(t, a, 0)
	c := updMatrix(3, []entry{{0, 1}})

	mustApply(t, &Modification{Sign: Update, C: c}, f)
	before := patternOf(f)
	res, w := mustApply(t, &Modification{Sign: Downdate, C: c}, f)

	if !res.OK {
		t.Fatalf("downdate flagged: %+v", res)
	}
	for j := 0; j < 3; j++ {
		if f.Diag(j) != 1 {
			t.Fatalf("diag %d: got %v want 1", j, f.Diag(j))
		}
	}
	checkInvariants(t, f, before, w)
}

func TestRank2FusedPath(t *testing.T) {

	a := tridiag(5, 2, -1)
	f := mustFactor(t, a, 0)
	before := patternOf(f)

	c := updMatrix(5, []entry{{0, 1}, {1, 1}}, []entry{{2, 1}})
	res, w := mustApply(t, &Modification{Sign: Update, C: c}, f)

	if !res.OK {
		t.Fatalf("update flagged: %+v", res)
	}
	if r := ldl.Residual(f, addRank(a, c, 1)); r > 1e-12 {
		t.Fatalf("residual too large: %v", r)
	}
	checkInvariants(t, f, before, w)
}

func TestQuadFusionTrigger(t *testing.T) {

	n := 6
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, 1)
		}
		a.SetSym(i, i, 5+float64(i))
	}

	cols := make([][]entry, 4)
	for k := range cols {
		cols[k] = []entry{{0, 1}, {k + 1, 0.5}}
	}
	c := updMatrix(n, cols...)

	fused := mustFactor(t, a, 0)
	before := patternOf(fused)
	res, w := mustApply(t, &Modification{Sign: Update, C: c}, fused)
	if res.Quad == 0 {
		t.Fatal("quad fusion did not trigger")
	}
	checkInvariants(t, fused, before, w)

	// four sequential rank-1 updates on a copy
	seq := mustFactor(t, a, 0)
	for k := range cols {
		mustApply(t, &Modification{Sign: Update, C: updMatrix(n, cols[k])}, seq)
	}

	for p := range fused.X {
		if math.Abs(fused.X[p]-seq.X[p]) > 1e-11 {
			t.Fatalf("entry %d: fused %v sequential %v", p, fused.X[p], seq.X[p])
		}
	}
}

func TestDBoundActivation(t *testing.T) {

	a := mat.NewSymDense(2, nil)
	a.SetSym(0, 0, 2e-18)
	a.SetSym(1, 1, 1)
	f := mustFactor(t, a, -1) // keep the zero coupling slot
	before := patternOf(f)

	c := updMatrix(2, []entry{{0, 1e-9}, {1, 1e-9}})
	res, w := mustApply(t, &Modification{Sign: Downdate, C: c, DBound: 1e-12}, f)

	// D(0,0) would land on 1e-18; the bound lifts it
	if f.Diag(0) != 1e-12 {
		t.Fatalf("diag 0: got %v want 1e-12", f.Diag(0))
	}
	for p, x := range f.X {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("entry %d not finite: %v", p, x)
		}
	}
	if !res.OK {
		t.Fatalf("positive pivot flagged: %+v", res)
	}
	checkInvariants(t, f, before, w)
}

func TestMaskFiltering(t *testing.T) {

	n := 4
	a := mat.NewSymDense(n, nil)
	diag := []float64{1, 2, 4, 8}
	for i, d := range diag {
		a.SetSym(i, i, d)
	}
	f := mustFactor(t, a, 0)
	before := patternOf(f)

	c := updMatrix(n, []entry{{0, 1}, {1, 1}}, []entry{{2, 1}, {3, 1}})
	mask := []int{0, 1, 0, 1} // odd rows at the mark are suppressed
	res, w := mustApply(t, &Modification{Sign: Update, C: c, Mask: mask, MaskMark: 1}, f)

	if !res.OK {
		t.Fatalf("update flagged: %+v", res)
	}
	// the rank-1 recurrence lands exactly on power-of-two arithmetic:
	// unmasked diagonals gain their scattered square, masked ones stay
	want := []float64{2, 2, 5, 8}
	for j, d := range want {
		if f.Diag(j) != d {
			t.Fatalf("diag %d: got %v want %v", j, f.Diag(j), d)
		}
	}
	checkInvariants(t, f, before, w)
}

func TestRoundTrip(t *testing.T) {

	n := 10
	a := denseSPD(n)
	f := mustFactor(t, a, -1)
	orig := slices.Clone(f.X)
	before := patternOf(f)

	c := updMatrix(n,
		[]entry{{0, 1}, {3, 0.5}, {7, 0.25}},
		[]entry{{2, 1}, {4, -0.5}},
		[]entry{{5, 0.75}, {9, 1}})

	mustApply(t, &Modification{Sign: Update, C: c}, f)
	res, w := mustApply(t, &Modification{Sign: Downdate, C: c}, f)
	if !res.OK {
		t.Fatalf("downdate flagged: %+v", res)
	}

	for p := range orig {
		if math.Abs(f.X[p]-orig[p]) > 1e-10 {
			t.Fatalf("entry %d: got %v want %v", p, f.X[p], orig[p])
		}
	}
	checkInvariants(t, f, before, w)
}

func TestRankEquivalence(t *testing.T) {

	n := 10
	a := denseSPD(n)

	for rank := 1; rank <= maxRank; rank++ {
		cols := make([][]entry, rank)
		for k := range cols {
			cols[k] = []entry{{k, 1}, {n - 1, 0.5 / float64(k+1)}}
		}
		c := updMatrix(n, cols...)

		full := mustFactor(t, a, -1)
		res, _ := mustApply(t, &Modification{Sign: Update, C: c}, full)
		if !res.OK {
			t.Fatalf("rank %d flagged: %+v", rank, res)
		}

		seq := mustFactor(t, a, -1)
		for k := range cols {
			mustApply(t, &Modification{Sign: Update, C: updMatrix(n, cols[k])}, seq)
		}

		for p := range full.X {
			if math.Abs(full.X[p]-seq.X[p]) > 1e-10 {
				t.Fatalf("rank %d entry %d: fused %v sequential %v",
					rank, p, full.X[p], seq.X[p])
			}
		}
	}
}

func TestCombinedVariant(t *testing.T) {

	n := 8
	a := denseSPD(n)

	c := updMatrix(n,
		[]entry{{0, 1}, {4, 0.5}},
		[]entry{{1, 0.75}, {6, 0.25}})
	d := updMatrix(n,
		[]entry{{0, 0.5}, {4, 0.25}},
		[]entry{{1, 0.5}, {6, 0.125}})

	comb := mustFactor(t, a, -1)
	before := patternOf(comb)
	res, w := mustApply(t, &Modification{C: c, D: d}, comb)
	if !res.OK {
		t.Fatalf("combined flagged: %+v", res)
	}
	checkInvariants(t, comb, before, w)

	seq := mustFactor(t, a, -1)
	mustApply(t, &Modification{Sign: Update, C: c}, seq)
	mustApply(t, &Modification{Sign: Downdate, C: d}, seq)

	for p := range comb.X {
		if math.Abs(comb.X[p]-seq.X[p]) > 1e-10 {
			t.Fatalf("entry %d: combined %v sequential %v", p, comb.X[p], seq.X[p])
		}
	}

	anew := addRank(addRank(a, c, 1), d, -1)
	if r := ldl.Residual(comb, anew); r > 1e-11 {
		t.Fatalf("residual too large: %v", r)
	}
}

func TestResidualBound(t *testing.T) {

	n := 9
	a := tridiag(n, 4, -1)
	f := mustFactor(t, a, 0)

	c := updMatrix(n, []entry{{0, 1}, {1, 1}}, []entry{{4, 1}, {5, 0.5}})
	res, _ := mustApply(t, &Modification{Sign: Update, C: c}, f)
	if !res.OK {
		t.Fatal("update flagged")
	}

	anew := addRank(a, c, 1)
	if r := ldl.Residual(f, anew); r > 1e-12*mat.Norm(anew, 2) {
		t.Fatalf("residual %v exceeds bound", r)
	}
}
