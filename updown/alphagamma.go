// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

// alphaGamma applies the Method-C1 scalar recurrence of one diagonal
// visit.  Given D(j,j) = dj, the captured row z of the workspace and the
// running alpha of every update column, it produces the new diagonal and
// the gamma coefficients consumed by the subsequent column sweep:
//
//	a     = alpha[k] ± z[k]²/dj
//	dj   *= a
//	g[k]  = ∓z[k]/dj
//	dj   /= alpha[k]        (the previous alpha)
//	alpha[k] = a
//
// The returned diagonal is clamped by the dbound policy.  A non-positive
// or non-finite result is counted as a pivot failure but never stops the
// sweep; the factor is then no longer positive definite and the caller
// decides whether that is fatal.
//
// Subroutine alphaGamma (ALPHA_GAMMA)
func alphaGamma[Z rvec](update bool, dj float64, alpha []float64, z Z, ctx *sweepCtx) (float64, Z) {
	var g Z
	d := dj
	if update {
		for k := 0; k < len(z); k++ {
			c := z[k]
			a := alpha[k] + (c*c)/d
			d *= a
			g[k] = -c / d
			d /= alpha[k]
			alpha[k] = a
		}
	} else {
		for k := 0; k < len(z); k++ {
			c := z[k]
			a := alpha[k] - (c*c)/d
			d *= a
			g[k] = c / d
			d /= alpha[k]
			alpha[k] = a
		}
	}
	return ctx.clamp(d), g
}

// alphaGamma2 is the combined-variant recurrence: for each k the update
// half (+C·Cᵀ) runs first and the downdate half (−D·Dᵀ) second.  The
// order within each k is part of the numerical contract and is frozen.
//
// Subroutine alphaGamma2 (ALPHA_GAMMA)
func alphaGamma2[Z rvec](dj float64, alphaC, alphaD []float64, zc, zd Z, ctx *sweepCtx) (float64, Z, Z) {
	var gc, gd Z
	d := dj
	for k := 0; k < len(zc); k++ {
		c := zc[k]
		aC := alphaC[k] + (c*c)/d
		d *= aC
		gc[k] = -c / d
		d /= alphaC[k]
		alphaC[k] = aC

		w := zd[k]
		aD := alphaD[k] - (w*w)/d
		d *= aD
		gd[k] = w / d
		d /= alphaD[k]
		alphaD[k] = aD
	}
	return ctx.clamp(d), gc, gd
}
