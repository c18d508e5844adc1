// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import "github.com/curioloop/sparseldl/ldl"

// pathKernel is one instance of the single-polarity kernel family,
// monomorphized over the rank.  The workspace slice w and alpha slice
// start at the wfirst column of the caller's buffers; wdim is the row
// stride of w.
type pathKernel func(update bool, j, e int, alpha, w []float64, wdim int, f *ldl.Factor, ctx *sweepCtx)

// sweepPath performs a rank-k update or downdate of L along the single
// elimination tree path from column j to its ancestor e, fusing 1, 2 or 4
// adjacent path columns per inner loop.
//
// A column and its parent fuse when the parent lies in the path and its
// pattern is the column's pattern shifted by one; likewise the 3rd and
// 4th path columns for a quad fusion.  Fusion decisions are local, so a
// single call may interleave all three inner-loop shapes.
//
// Every row of w the sweep consumes is zeroed as it is read, which leaves
// the workspace clean for the next call.  The serial dependency between
// the L value and the workspace row,
//
//	w[i,k] -= z[k]·lx
//	lx     -= g[k]·w[i,k]
//
// is the recurrence itself and must not be reordered.
//
// Subroutine sweepPath (t_cholmod_updown2_numkr)
func sweepPath[Z rvec](update bool, j, e int, alpha, w []float64, wdim int, f *ldl.Factor, ctx *sweepCtx) {
	Lp, Li, Lnz, Lx := f.P, f.I, f.Nz, f.X
	n := f.N

	// walk up the etree from node j to its ancestor e
	for parent := 0; j <= e; j = parent {

		p0 := Lp[j] // col j is Li,Lx[p0 ... p0+lnz-1]
		lnz := Lnz[j]
		pend := p0 + lnz

		var z0 Z
		w0 := w[wdim*j:]
		for k := 0; k < len(z0); k++ {
			z0[k] = w0[k]
			w0[k] = zero
		}

		// update D (j,j)
		d0, g0 := alphaGamma(update, Lx[p0], alpha, z0, ctx)
		Lx[p0] = d0
		p0++
		ctx.cols++

		// determine how many columns of L to update at the same time
		parent = n
		if lnz > 1 {
			parent = Li[p0]
		}
		if parent > e || lnz != Lnz[parent]+1 {

			// ------------------------------------------------------------
			// update one column of L
			// ------------------------------------------------------------

			// cleanup iteration if length is not a multiple of 4
			switch (lnz - 1) % 4 {
			case 1:
				i0 := Li[p0]
				lx0 := Lx[p0]
				w0 := w[wdim*i0:]
				for k := 0; k < len(z0); k++ {
					w0[k] -= z0[k] * lx0
					lx0 -= g0[k] * w0[k]
				}
				Lx[p0] = lx0
				p0++

			case 2:
				i0, i1 := Li[p0], Li[p0+1]
				lx0, lx1 := Lx[p0], Lx[p0+1]
				w0, w1 := w[wdim*i0:], w[wdim*i1:]
				for k := 0; k < len(z0); k++ {
					w0[k] -= z0[k] * lx0
					w1[k] -= z0[k] * lx1
					lx0 -= g0[k] * w0[k]
					lx1 -= g0[k] * w1[k]
				}
				Lx[p0] = lx0
				Lx[p0+1] = lx1
				p0 += 2

			case 3:
				i0, i1, i2 := Li[p0], Li[p0+1], Li[p0+2]
				lx0, lx1, lx2 := Lx[p0], Lx[p0+1], Lx[p0+2]
				w0, w1, w2 := w[wdim*i0:], w[wdim*i1:], w[wdim*i2:]
				for k := 0; k < len(z0); k++ {
					w0[k] -= z0[k] * lx0
					w1[k] -= z0[k] * lx1
					w2[k] -= z0[k] * lx2
					lx0 -= g0[k] * w0[k]
					lx1 -= g0[k] * w1[k]
					lx2 -= g0[k] * w2[k]
				}
				Lx[p0] = lx0
				Lx[p0+1] = lx1
				Lx[p0+2] = lx2
				p0 += 3
			}

			// each iteration updates L (i0..i3, j)
			for ; p0 < pend; p0 += 4 {
				i0, i1, i2, i3 := Li[p0], Li[p0+1], Li[p0+2], Li[p0+3]
				lx0, lx1, lx2, lx3 := Lx[p0], Lx[p0+1], Lx[p0+2], Lx[p0+3]
				w0, w1, w2, w3 := w[wdim*i0:], w[wdim*i1:], w[wdim*i2:], w[wdim*i3:]
				for k := 0; k < len(z0); k++ {
					w0[k] -= z0[k] * lx0
					w1[k] -= z0[k] * lx1
					w2[k] -= z0[k] * lx2
					w3[k] -= z0[k] * lx3
					lx0 -= g0[k] * w0[k]
					lx1 -= g0[k] * w1[k]
					lx2 -= g0[k] * w2[k]
					lx3 -= g0[k] * w3[k]
				}
				Lx[p0] = lx0
				Lx[p0+1] = lx1
				Lx[p0+2] = lx2
				Lx[p0+3] = lx3
			}
			continue
		}

		// ----------------------------------------------------------------
		// node j and its parent j1 can be updated at the same time
		// ----------------------------------------------------------------

		j1 := parent
		j2, j3 := n, n
		if lnz > 2 {
			j2 = Li[p0+1]
		}
		if lnz > 3 {
			j3 = Li[p0+2]
		}

		var z1 Z
		w1 := w[wdim*j1:]
		for k := 0; k < len(z1); k++ {
			z1[k] = w1[k]
			w1[k] = zero
		}
		p1 := Lp[j1]

		// update L (j1,j)
		{
			lx := Lx[p0]
			for k := 0; k < len(z0); k++ {
				z1[k] -= z0[k] * lx
				lx -= g0[k] * z1[k]
			}
			Lx[p0] = lx
			p0++
		}

		// update D (j1,j1)
		d1, g1 := alphaGamma(update, Lx[p1], alpha, z1, ctx)
		Lx[p1] = d1
		p1++
		ctx.cols++

		if j2 <= e && j3 <= e && lnz == Lnz[j2]+2 && lnz == Lnz[j3]+3 {

			// ------------------------------------------------------------
			// update 4 columns of L
			// ------------------------------------------------------------

			// p0 and p1 currently point to row j2 in cols j and j1 of L
			ctx.quad++
			ctx.cols += 2

			parent = n
			if lnz > 4 {
				parent = Li[p0+2]
			}

			var z2, z3 Z
			w2 := w[wdim*j2:]
			w3 := w[wdim*j3:]
			for k := 0; k < len(z2); k++ {
				z2[k] = w2[k]
				w2[k] = zero
			}
			for k := 0; k < len(z3); k++ {
				z3[k] = w3[k]
				w3[k] = zero
			}
			p2 := Lp[j2]
			p3 := Lp[j3]

			// update L (j2,j) and L (j2,j1)
			{
				lx0, lx1 := Lx[p0], Lx[p1]
				for k := 0; k < len(z0); k++ {
					z2[k] -= z0[k] * lx0
					lx0 -= g0[k] * z2[k]
					z2[k] -= z1[k] * lx1
					lx1 -= g1[k] * z2[k]
				}
				Lx[p0] = lx0
				Lx[p1] = lx1
				p0++
				p1++
			}

			// update D (j2,j2)
			d2, g2 := alphaGamma(update, Lx[p2], alpha, z2, ctx)
			Lx[p2] = d2
			p2++

			// update L (j3,j), L (j3,j1), and L (j3,j2)
			{
				lx0, lx1, lx2 := Lx[p0], Lx[p1], Lx[p2]
				for k := 0; k < len(z0); k++ {
					z3[k] -= z0[k] * lx0
					lx0 -= g0[k] * z3[k]
					z3[k] -= z1[k] * lx1
					lx1 -= g1[k] * z3[k]
					z3[k] -= z2[k] * lx2
					lx2 -= g2[k] * z3[k]
				}
				Lx[p0] = lx0
				Lx[p1] = lx1
				Lx[p2] = lx2
				p0++
				p1++
				p2++
			}

			// update D (j3,j3)
			d3, g3 := alphaGamma(update, Lx[p3], alpha, z3, ctx)
			Lx[p3] = d3
			p3++

			// each iteration updates one row of L (i, [j j1 j2 j3])
			for ; p0 < pend; p0, p1, p2, p3 = p0+1, p1+1, p2+1, p3+1 {
				i0 := Li[p0]
				lx0, lx1, lx2, lx3 := Lx[p0], Lx[p1], Lx[p2], Lx[p3]
				w0 := w[wdim*i0:]
				for k := 0; k < len(z0); k++ {
					w0[k] -= z0[k] * lx0
					lx0 -= g0[k] * w0[k]
					w0[k] -= z1[k] * lx1
					lx1 -= g1[k] * w0[k]
					w0[k] -= z2[k] * lx2
					lx2 -= g2[k] * w0[k]
					w0[k] -= z3[k] * lx3
					lx3 -= g3[k] * w0[k]
				}
				Lx[p0] = lx0
				Lx[p1] = lx1
				Lx[p2] = lx2
				Lx[p3] = lx3
			}

		} else {

			// ------------------------------------------------------------
			// update 2 columns of L
			// ------------------------------------------------------------

			ctx.dual++
			parent = j2

			// cleanup iteration if length is odd
			if (lnz-2)%2 == 1 {
				i0 := Li[p0]
				lx0, lx1 := Lx[p0], Lx[p1]
				w0 := w[wdim*i0:]
				for k := 0; k < len(z0); k++ {
					w0[k] -= z0[k] * lx0
					lx0 -= g0[k] * w0[k]
					w0[k] -= z1[k] * lx1
					lx1 -= g1[k] * w0[k]
				}
				Lx[p0] = lx0
				Lx[p1] = lx1
				p0++
				p1++
			}

			// each iteration updates two rows of L (i0 i1, [j j1])
			for ; p0 < pend; p0, p1 = p0+2, p1+2 {
				i0, i1 := Li[p0], Li[p0+1]
				lx00, lx10 := Lx[p0], Lx[p0+1]
				lx01, lx11 := Lx[p1], Lx[p1+1]
				w0, w1 := w[wdim*i0:], w[wdim*i1:]
				for k := 0; k < len(z0); k++ {
					wk0 := w0[k] - z0[k]*lx00
					wk1 := w1[k] - z0[k]*lx10
					lx00 -= g0[k] * wk0
					lx10 -= g0[k] * wk1
					wk0 -= z1[k] * lx01
					wk1 -= z1[k] * lx11
					w0[k] = wk0
					w1[k] = wk1
					lx01 -= g1[k] * wk0
					lx11 -= g1[k] * wk1
				}
				Lx[p0] = lx00
				Lx[p0+1] = lx10
				Lx[p1] = lx01
				Lx[p1+1] = lx11
			}
		}
	}
}
