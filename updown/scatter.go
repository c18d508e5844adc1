// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import "github.com/curioloop/sparseldl/ldl"

// scatterCol materializes column ccol of the sparse update matrix into
// column wcol of the row-major workspace w with row stride wdim.  Rows
// suppressed by the mask (mask[i] ≥ maskmark) are skipped, which lets a
// caller apply a modification to a subset of rows.
func scatterCol(c *ldl.Sparse, ccol int, w []float64, wdim, wcol int, mask []int, maskmark int) {
	for p, pend := c.ColRange(ccol); p < pend; p++ {
		i := c.I[p]
		if mask == nil || mask[i] < maskmark {
			w[wdim*i+wcol] = c.X[p]
		}
	}
}
