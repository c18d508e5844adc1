// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import "github.com/curioloop/sparseldl/ldl"

// pathKernel2 is one instance of the combined kernel family, which
// applies +C·Cᵀ and −D·Dᵀ in a single sweep.  wc and wd are the two
// row-major workspaces, alphaC and alphaD their recurrence states.
type pathKernel2 func(j, e int, alphaC, alphaD, wc, wd []float64, wdim int, f *ldl.Factor, ctx *sweepCtx)

// sweepPath2 is the combined analogue of sweepPath.  The structure — path
// walk, dynamic single/dual/quad fusion, self-cleaning workspaces — is
// identical; every inner iteration interleaves the update polarity ahead
// of the downdate polarity, per k.  That interleave fixes the
// floating-point result and must match the recurrence in alphaGamma2.
//
// Subroutine sweepPath2 (t_cholmod_updown2_numkr)
func sweepPath2[Z rvec](j, e int, alphaC, alphaD, wc, wd []float64, wdim int, f *ldl.Factor, ctx *sweepCtx) {
	Lp, Li, Lnz, Lx := f.P, f.I, f.Nz, f.X
	n := f.N

	// walk up the etree from node j to its ancestor e
	for parent := 0; j <= e; j = parent {

		p0 := Lp[j]
		lnz := Lnz[j]
		pend := p0 + lnz

		var zc0, zd0 Z
		wc0 := wc[wdim*j:]
		wd0 := wd[wdim*j:]
		for k := 0; k < len(zc0); k++ {
			zc0[k] = wc0[k]
			wc0[k] = zero
			zd0[k] = wd0[k]
			wd0[k] = zero
		}

		// update D (j,j)
		d0, gc0, gd0 := alphaGamma2(Lx[p0], alphaC, alphaD, zc0, zd0, ctx)
		Lx[p0] = d0
		p0++
		ctx.cols++

		parent = n
		if lnz > 1 {
			parent = Li[p0]
		}
		if parent > e || lnz != Lnz[parent]+1 {

			// ------------------------------------------------------------
			// update one column of L
			// ------------------------------------------------------------

			switch (lnz - 1) % 4 {
			case 1:
				i0 := Li[p0]
				lx0 := Lx[p0]
				wc0 := wc[wdim*i0:]
				wd0 := wd[wdim*i0:]
				for k := 0; k < len(zc0); k++ {
					wc0[k] -= zc0[k] * lx0
					lx0 -= gc0[k] * wc0[k]
					wd0[k] -= zd0[k] * lx0
					lx0 -= gd0[k] * wd0[k]
				}
				Lx[p0] = lx0
				p0++

			case 2:
				i0, i1 := Li[p0], Li[p0+1]
				lx0, lx1 := Lx[p0], Lx[p0+1]
				wc0, wc1 := wc[wdim*i0:], wc[wdim*i1:]
				wd0, wd1 := wd[wdim*i0:], wd[wdim*i1:]
				for k := 0; k < len(zc0); k++ {
					wc0[k] -= zc0[k] * lx0
					wc1[k] -= zc0[k] * lx1
					lx0 -= gc0[k] * wc0[k]
					lx1 -= gc0[k] * wc1[k]
					wd0[k] -= zd0[k] * lx0
					wd1[k] -= zd0[k] * lx1
					lx0 -= gd0[k] * wd0[k]
					lx1 -= gd0[k] * wd1[k]
				}
				Lx[p0] = lx0
				Lx[p0+1] = lx1
				p0 += 2

			case 3:
				i0, i1, i2 := Li[p0], Li[p0+1], Li[p0+2]
				lx0, lx1, lx2 := Lx[p0], Lx[p0+1], Lx[p0+2]
				wc0, wc1, wc2 := wc[wdim*i0:], wc[wdim*i1:], wc[wdim*i2:]
				wd0, wd1, wd2 := wd[wdim*i0:], wd[wdim*i1:], wd[wdim*i2:]
				for k := 0; k < len(zc0); k++ {
					wc0[k] -= zc0[k] * lx0
					wc1[k] -= zc0[k] * lx1
					wc2[k] -= zc0[k] * lx2
					lx0 -= gc0[k] * wc0[k]
					lx1 -= gc0[k] * wc1[k]
					lx2 -= gc0[k] * wc2[k]
					wd0[k] -= zd0[k] * lx0
					wd1[k] -= zd0[k] * lx1
					wd2[k] -= zd0[k] * lx2
					lx0 -= gd0[k] * wd0[k]
					lx1 -= gd0[k] * wd1[k]
					lx2 -= gd0[k] * wd2[k]
				}
				Lx[p0] = lx0
				Lx[p0+1] = lx1
				Lx[p0+2] = lx2
				p0 += 3
			}

			for ; p0 < pend; p0 += 4 {
				i0, i1, i2, i3 := Li[p0], Li[p0+1], Li[p0+2], Li[p0+3]
				lx0, lx1, lx2, lx3 := Lx[p0], Lx[p0+1], Lx[p0+2], Lx[p0+3]
				wc0, wc1, wc2, wc3 := wc[wdim*i0:], wc[wdim*i1:], wc[wdim*i2:], wc[wdim*i3:]
				wd0, wd1, wd2, wd3 := wd[wdim*i0:], wd[wdim*i1:], wd[wdim*i2:], wd[wdim*i3:]
				for k := 0; k < len(zc0); k++ {
					wc0[k] -= zc0[k] * lx0
					wc1[k] -= zc0[k] * lx1
					wc2[k] -= zc0[k] * lx2
					wc3[k] -= zc0[k] * lx3
					lx0 -= gc0[k] * wc0[k]
					lx1 -= gc0[k] * wc1[k]
					lx2 -= gc0[k] * wc2[k]
					lx3 -= gc0[k] * wc3[k]
					wd0[k] -= zd0[k] * lx0
					wd1[k] -= zd0[k] * lx1
					wd2[k] -= zd0[k] * lx2
					wd3[k] -= zd0[k] * lx3
					lx0 -= gd0[k] * wd0[k]
					lx1 -= gd0[k] * wd1[k]
					lx2 -= gd0[k] * wd2[k]
					lx3 -= gd0[k] * wd3[k]
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

		var zc1, zd1 Z
		wc1 := wc[wdim*j1:]
		wd1 := wd[wdim*j1:]
		for k := 0; k < len(zc1); k++ {
			zc1[k] = wc1[k]
			wc1[k] = zero
			zd1[k] = wd1[k]
			wd1[k] = zero
		}
		p1 := Lp[j1]

		// update L (j1,j)
		{
			lx := Lx[p0]
			for k := 0; k < len(zc0); k++ {
				zc1[k] -= zc0[k] * lx
				lx -= gc0[k] * zc1[k]
				zd1[k] -= zd0[k] * lx
				lx -= gd0[k] * zd1[k]
			}
			Lx[p0] = lx
			p0++
		}

		// update D (j1,j1)
		d1, gc1, gd1 := alphaGamma2(Lx[p1], alphaC, alphaD, zc1, zd1, ctx)
		Lx[p1] = d1
		p1++
		ctx.cols++

		if j2 <= e && j3 <= e && lnz == Lnz[j2]+2 && lnz == Lnz[j3]+3 {

			// ------------------------------------------------------------
			// update 4 columns of L
			// ------------------------------------------------------------

			ctx.quad++
			ctx.cols += 2

			parent = n
			if lnz > 4 {
				parent = Li[p0+2]
			}

			var zc2, zd2, zc3, zd3 Z
			wc2 := wc[wdim*j2:]
			wd2 := wd[wdim*j2:]
			wc3 := wc[wdim*j3:]
			wd3 := wd[wdim*j3:]
			for k := 0; k < len(zc2); k++ {
				zc2[k] = wc2[k]
				wc2[k] = zero
				zd2[k] = wd2[k]
				wd2[k] = zero
			}
			for k := 0; k < len(zc3); k++ {
				zc3[k] = wc3[k]
				wc3[k] = zero
				zd3[k] = wd3[k]
				wd3[k] = zero
			}
			p2 := Lp[j2]
			p3 := Lp[j3]

			// update L (j2,j) and L (j2,j1)
			{
				lx0, lx1 := Lx[p0], Lx[p1]
				for k := 0; k < len(zc0); k++ {
					zc2[k] -= zc0[k] * lx0
					lx0 -= gc0[k] * zc2[k]
					zc2[k] -= zc1[k] * lx1
					lx1 -= gc1[k] * zc2[k]
					zd2[k] -= zd0[k] * lx0
					lx0 -= gd0[k] * zd2[k]
					zd2[k] -= zd1[k] * lx1
					lx1 -= gd1[k] * zd2[k]
				}
				Lx[p0] = lx0
				Lx[p1] = lx1
				p0++
				p1++
			}

			// update D (j2,j2)
			d2, gc2, gd2 := alphaGamma2(Lx[p2], alphaC, alphaD, zc2, zd2, ctx)
			Lx[p2] = d2
			p2++

			// update L (j3,j), L (j3,j1), and L (j3,j2)
			{
				lx0, lx1, lx2 := Lx[p0], Lx[p1], Lx[p2]
				for k := 0; k < len(zc0); k++ {
					zc3[k] -= zc0[k] * lx0
					lx0 -= gc0[k] * zc3[k]
					zc3[k] -= zc1[k] * lx1
					lx1 -= gc1[k] * zc3[k]
					zc3[k] -= zc2[k] * lx2
					lx2 -= gc2[k] * zc3[k]
					zd3[k] -= zd0[k] * lx0
					lx0 -= gd0[k] * zd3[k]
					zd3[k] -= zd1[k] * lx1
					lx1 -= gd1[k] * zd3[k]
					zd3[k] -= zd2[k] * lx2
					lx2 -= gd2[k] * zd3[k]
				}
				Lx[p0] = lx0
				Lx[p1] = lx1
				Lx[p2] = lx2
				p0++
				p1++
				p2++
			}

			// update D (j3,j3)
			d3, gc3, gd3 := alphaGamma2(Lx[p3], alphaC, alphaD, zc3, zd3, ctx)
			Lx[p3] = d3
			p3++

			// each iteration updates one row of L (i, [j j1 j2 j3])
			for ; p0 < pend; p0, p1, p2, p3 = p0+1, p1+1, p2+1, p3+1 {
				i0 := Li[p0]
				lx0, lx1, lx2, lx3 := Lx[p0], Lx[p1], Lx[p2], Lx[p3]
				wc0 := wc[wdim*i0:]
				wd0 := wd[wdim*i0:]
				for k := 0; k < len(zc0); k++ {
					wc0[k] -= zc0[k] * lx0
					lx0 -= gc0[k] * wc0[k]
					wc0[k] -= zc1[k] * lx1
					lx1 -= gc1[k] * wc0[k]
					wc0[k] -= zc2[k] * lx2
					lx2 -= gc2[k] * wc0[k]
					wc0[k] -= zc3[k] * lx3
					lx3 -= gc3[k] * wc0[k]
					wd0[k] -= zd0[k] * lx0
					lx0 -= gd0[k] * wd0[k]
					wd0[k] -= zd1[k] * lx1
					lx1 -= gd1[k] * wd0[k]
					wd0[k] -= zd2[k] * lx2
					lx2 -= gd2[k] * wd0[k]
					wd0[k] -= zd3[k] * lx3
					lx3 -= gd3[k] * wd0[k]
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
				wc0 := wc[wdim*i0:]
				wd0 := wd[wdim*i0:]
				for k := 0; k < len(zc0); k++ {
					wc0[k] -= zc0[k] * lx0
					lx0 -= gc0[k] * wc0[k]
					wc0[k] -= zc1[k] * lx1
					lx1 -= gc1[k] * wc0[k]
					wd0[k] -= zd0[k] * lx0
					lx0 -= gd0[k] * wd0[k]
					wd0[k] -= zd1[k] * lx1
					lx1 -= gd1[k] * wd0[k]
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
				wc0, wc1 := wc[wdim*i0:], wc[wdim*i1:]
				wd0, wd1 := wd[wdim*i0:], wd[wdim*i1:]
				for k := 0; k < len(zc0); k++ {
					ck0 := wc0[k] - zc0[k]*lx00
					ck1 := wc1[k] - zc0[k]*lx10
					lx00 -= gc0[k] * ck0
					lx10 -= gc0[k] * ck1
					ck0 -= zc1[k] * lx01
					ck1 -= zc1[k] * lx11
					wc0[k] = ck0
					wc1[k] = ck1
					lx01 -= gc1[k] * ck0
					lx11 -= gc1[k] * ck1
					dk0 := wd0[k] - zd0[k]*lx00
					dk1 := wd1[k] - zd0[k]*lx10
					lx00 -= gd0[k] * dk0
					lx10 -= gd0[k] * dk1
					dk0 -= zd1[k] * lx01
					dk1 -= zd1[k] * lx11
					wd0[k] = dk0
					wd1[k] = dk1
					lx01 -= gd1[k] * dk0
					lx11 -= gd1[k] * dk1
				}
				Lx[p0] = lx00
				Lx[p0+1] = lx10
				Lx[p1] = lx01
				Lx[p1+1] = lx11
			}
		}
	}
}
