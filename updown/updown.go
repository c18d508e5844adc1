// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package updown

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/curioloop/sparseldl/ldl"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only the summary line of each modification
	LogLast LogLevel = 0
	// LogTrace print one line per swept subpath
	LogTrace LogLevel = 99
)

// Logger handles logging output for the modification driver.
// Note the writer must be thread-safe.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

// Modification specifies a low-rank perturbation of a factored matrix.
type Modification struct {
	// Sign selects between +C·Cᵀ and −C·Cᵀ.  Ignored when D is set.
	Sign Sign
	// C holds the update columns.  Row indices must be sorted and no
	// used column may be empty.
	C *ldl.Sparse
	// D optionally holds downdate columns with the same pattern as C;
	// the modification is then the combined +C·Cᵀ − D·Dᵀ.
	D *ldl.Sparse
	// Rank is the number of leading columns of C to apply, 1 to 8.
	// Zero means every column of C.
	Rank int
	// DBound, when positive, is clamped onto every rewritten diagonal.
	DBound float64
	// Mask, when non-nil, suppresses the rows i with Mask[i] ≥ MaskMark
	// from the scatter stage.  Length must equal the matrix dimension.
	Mask     []int
	MaskMark int
}

// New validates the modification and fixes the workspace geometry.
func (m *Modification) New(logger *Logger) (modifier *Modifier, err error) {

	if logger == nil {
		logger = new(Logger)
		logger.Level = LogNoop
	}
	if logger.Msg == nil {
		logger.Msg = os.Stdout
	}

	rank := m.Rank
	if rank == 0 && m.C != nil {
		rank = m.C.NCol
	}

	switch {
	case m.C == nil:
		err = errors.New("update matrix is required")
	case rank < 1 || rank > maxRank:
		err = errors.New("rank must lie between 1 and 8")
	case rank > m.C.NCol:
		err = errors.New("rank must not exceed update column count")
	case m.Sign != Update && m.Sign != Downdate:
		err = errors.New("sign must be update or downdate")
	case m.DBound < zero:
		err = errors.New("diagonal bound must not be negative")
	case m.Mask != nil && len(m.Mask) != m.C.NRow:
		err = errors.New("mask size must equal to matrix dimension")
	}
	if err != nil {
		return
	}
	if err = m.C.Check(); err != nil {
		return
	}
	for k := 0; k < rank; k++ {
		if p, pend := m.C.ColRange(k); p == pend {
			return nil, errors.New("update columns must not be empty")
		}
	}

	if m.D != nil {
		if err = m.D.Check(); err != nil {
			return
		}
		if m.D.NRow != m.C.NRow || m.D.NCol < rank {
			return nil, errors.New("downdate matrix shape not match update")
		}
		for k := 0; k < rank; k++ {
			p, pend := m.C.ColRange(k)
			q, qend := m.D.ColRange(k)
			if pend-p != qend-q {
				return nil, errors.New("downdate pattern not match update")
			}
			for ; p < pend; p, q = p+1, q+1 {
				if m.C.I[p] != m.D.I[q] {
					return nil, errors.New("downdate pattern not match update")
				}
			}
		}
	}

	modifier = &Modifier{
		updSpec{
			n:        m.C.NRow,
			rank:     rank,
			wdim:     wdimFor(rank),
			sign:     m.Sign,
			c:        m.C,
			d:        m.D,
			dbound:   m.DBound,
			mask:     m.Mask,
			maskmark: m.MaskMark,
			logger:   *logger,
		},
	}
	return
}

// updSpec is the validated, immutable description of a modification.
type updSpec struct {
	n, rank, wdim int
	sign          Sign
	c, d          *ldl.Sparse
	dbound        float64
	mask          []int
	maskmark      int
	logger        Logger
}

// Modifier applies a validated modification to factors of matching
// dimension.  One modifier may be shared across goroutines as long as
// each uses its own workspace and factor.
type Modifier struct {
	updSpec
}

// Workspace contains the dense scratch of the modification: the n×wdim
// row-major workspaces and the alpha recurrence state.  The workspaces
// are zero between calls; the kernels consume every row they touch and
// zero it back (the self-cleaning contract), so no clearing pass exists.
type Workspace struct {
	n, wdim int
	updCtx
}

type updCtx struct {
	w, wd         []float64 // n×wdim, row-major
	alpha, alphaD []float64 // length wdim
	sweepCtx
}

// Init allocates a workspace for the modifier.
// To avoid race conditions, separate workspaces need to be created for
// each goroutine.  But multiple workspaces could share one modifier.
func (md *Modifier) Init() *Workspace {
	w := new(Workspace)
	w.n, w.wdim = md.n, md.wdim
	w.w = make([]float64, md.n*md.wdim)
	w.alpha = make([]float64, md.wdim)
	if md.d != nil {
		w.wd = make([]float64, md.n*md.wdim)
		w.alphaD = make([]float64, md.wdim)
	}
	return w
}

// Result reports the outcome of one modification.
type Result struct {
	// OK is true when every rewritten diagonal stayed strictly positive.
	OK bool
	// NotPosDef counts the columns whose diagonal did not.
	NotPosDef int
	Summary
}

// Summary contains counters of one modification pass.
type Summary struct {
	Paths int // interior subpaths swept
	Cols  int // factor columns rewritten
	Dual  int // 2-column fusions taken
	Quad  int // 4-column fusions taken
}

// Apply modifies the factor in place.  The plan is derived from the
// factor's elimination tree and the pattern of C; the factor pattern must
// already contain the fill of the modified matrix, and only values are
// rewritten.  Alpha state and counters in the workspace are overwritten.
func (md *Modifier) Apply(f *ldl.Factor, w *Workspace) *Result {
	plan := buildPlan(f, md.c, md.rank)
	res, err := md.ApplyPlan(f, plan, w)
	if err != nil {
		// the internal planner never emits an invalid plan
		panic(err)
	}
	return res
}

// ApplyPlan modifies the factor in place along an externally produced
// path plan: the md.rank leaf descriptors first, then the interior
// descriptors in leaves-first order.
func (md *Modifier) ApplyPlan(f *ldl.Factor, plan []Path, w *Workspace) (*Result, error) {

	if f.N != md.n {
		panic("factor dimension not match spec")
	}
	if w.n != md.n || w.wdim != md.wdim {
		panic("workspace dimension not match spec")
	}
	if err := checkPlan(plan, md.rank, md.wdim, md.n, md.c.NCol); err != nil {
		return nil, err
	}

	w.sweepCtx = sweepCtx{dbound: md.dbound, useDBound: md.dbound > zero}
	log := &md.logger

	if md.d != nil {
		numericUpdown2(md.c, md.d, md.rank, f,
			w.w, w.wd, w.alpha, w.alphaD, md.wdim, plan,
			md.mask, md.maskmark, &w.sweepCtx, log)
	} else {
		numericUpdown(md.sign == Update, md.c, md.rank, f,
			w.w, w.alpha, md.wdim, plan,
			md.mask, md.maskmark, &w.sweepCtx, log)
	}

	res := &Result{
		OK:        w.notPosDef == 0,
		NotPosDef: w.notPosDef,
		Summary: Summary{
			Paths: len(plan) - md.rank,
			Cols:  w.cols,
			Dual:  w.dual,
			Quad:  w.quad,
		},
	}
	if log.enable(LogLast) {
		log.log("rank %d wdim %d: %d paths, %d cols (%d dual, %d quad), %d not posdef\n",
			md.rank, md.wdim, res.Paths, res.Cols, res.Dual, res.Quad, res.NotPosDef)
	}
	return res, nil
}
