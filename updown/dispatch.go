// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import "github.com/curioloop/sparseldl/ldl"

// Path describes one subpath of the elimination tree walked by the
// numeric kernels.  The plan for a rank-r modification holds the r leaf
// descriptors first — consumed only by the scatter stage, with CCol
// naming the source column of C — followed by the interior descriptors
// in leaves-first order, each swept by the kernel selected by its Rank.
type Path struct {
	Start  int // first column of the subpath
	End    int // last column, an ancestor of Start (inclusive)
	WFirst int // first workspace column this subpath consumes
	Rank   int // number of workspace columns this subpath consumes
	CCol   int // source column of C, meaningful for leaf descriptors only
}

// sweepKernels is the single-polarity kernel family indexed by rank.
// Each entry is a distinct instantiation with fully unrolled rank loops;
// the workspace width wdim is supplied at the call.
var sweepKernels = [maxRank + 1]pathKernel{
	1: sweepPath[[1]float64],
	2: sweepPath[[2]float64],
	3: sweepPath[[3]float64],
	4: sweepPath[[4]float64],
	5: sweepPath[[5]float64],
	6: sweepPath[[6]float64],
	7: sweepPath[[7]float64],
	8: sweepPath[[8]float64],
}

// sweepKernels2 is the combined update+downdate family.
var sweepKernels2 = [maxRank + 1]pathKernel2{
	1: sweepPath2[[1]float64],
	2: sweepPath2[[2]float64],
	3: sweepPath2[[3]float64],
	4: sweepPath2[[4]float64],
	5: sweepPath2[[5]float64],
	6: sweepPath2[[6]float64],
	7: sweepPath2[[7]float64],
	8: sweepPath2[[8]float64],
}

// wdimFor returns the workspace width used for a modification of the
// given total rank: the smallest power of two not below it.
func wdimFor(rank int) int {
	w := 1
	for w < rank {
		w <<= 1
	}
	return w
}

// numericUpdown runs the single-polarity modification over a path plan:
// scatter the rank leaf descriptors of C into w, then sweep every
// interior descriptor with the kernel instance matching its rank.
//
// Subroutine numericUpdown (updown2_wdim_r)
func numericUpdown(update bool, c *ldl.Sparse, rank int, f *ldl.Factor,
	w, alpha []float64, wdim int, plan []Path,
	mask []int, maskmark int, ctx *sweepCtx, log *Logger) {

	// scatter C into W
	for path := 0; path < rank; path++ {
		scatterCol(c, plan[path].CCol, w, wdim, path, mask, maskmark)
		alpha[path] = one
	}

	// numeric update/downdate for each disjoint subpath in DFS order
	for path := rank; path < len(plan); path++ {
		pt := &plan[path]
		if log.enable(LogTrace) {
			log.log("path %d: cols [%d..%d] w [%d..%d)\n",
				path, pt.Start, pt.End, pt.WFirst, pt.WFirst+pt.Rank)
		}
		sweepKernels[pt.Rank](update, pt.Start, pt.End,
			alpha[pt.WFirst:], w[pt.WFirst:], wdim, f, ctx)
	}
}

// numericUpdown2 runs the combined modification +C·Cᵀ − D·Dᵀ.  C and D
// share one path plan since their patterns are identical.
//
// Subroutine numericUpdown2 (updown2_wdim_r)
func numericUpdown2(c, d *ldl.Sparse, rank int, f *ldl.Factor,
	wc, wd, alphaC, alphaD []float64, wdim int, plan []Path,
	mask []int, maskmark int, ctx *sweepCtx, log *Logger) {

	for path := 0; path < rank; path++ {
		scatterCol(c, plan[path].CCol, wc, wdim, path, mask, maskmark)
		scatterCol(d, plan[path].CCol, wd, wdim, path, mask, maskmark)
		alphaC[path] = one
		alphaD[path] = one
	}

	for path := rank; path < len(plan); path++ {
		pt := &plan[path]
		if log.enable(LogTrace) {
			log.log("path %d: cols [%d..%d] w [%d..%d)\n",
				path, pt.Start, pt.End, pt.WFirst, pt.WFirst+pt.Rank)
		}
		sweepKernels2[pt.Rank](pt.Start, pt.End,
			alphaC[pt.WFirst:], alphaD[pt.WFirst:],
			wc[pt.WFirst:], wd[pt.WFirst:], wdim, f, ctx)
	}
}
