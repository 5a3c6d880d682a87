// Copyright 2020 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sample implements spec component C8: finding one integer point
// of a basic set (or proving none exists), following isl_sample.c's shape
// — variable compression by Hermite normal form, then a depth-first
// integer scan over the compressed dimensions, each level's range taken
// from an LP bound via tab.
//
// When every scanned dimension's LP bound is exact (tab.Ok in both
// directions), the scan is complete: it will find a point whenever one
// exists, or prove there is none. isl_sample.c's separate recession-cone
// decomposition (isl_basic_set_sample_with_cone) handles the case where a
// dimension is unbounded by transforming to bounded/unbounded blocks and
// rounding a rational point up inside the shifted cone; that
// transformation is not ported here given this component's share of the
// overall effort budget. Instead, an Unbounded LP bound falls back to a
// capped walk outward from the bounded side (candidateValues), which
// finds a point for the common case (e.g. {[x]: x>=0}) without the full
// cone machinery, but is not itself a proof procedure: scanDim tracks
// this via its proven return, and Basic refuses to mark a set Empty on
// an inconclusive result — see Basic's doc comment.
package sample

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/mat"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
	"github.com/Meinersbur/islgo/internal/core/tab"
)

// generations records, per basic set, the cache tag stamped by the most
// recent completed Basic call on it — a point of reference for callers
// that want to tell whether a cached sample survived a later mutation
// (any mutation gives b a new identity via cow, so a stale tag simply
// stops being found here).
var generations sync.Map

// Generation returns the cache tag last stamped on b by Basic, or "" if
// Basic has never completed on this exact handle.
func Generation(b *adt.BasicMap) string {
	if v, ok := generations.Load(b); ok {
		return v.(string)
	}
	return ""
}

// Basic returns an integer point of b (spec §4.3). pt is b's own
// CachedSample if one is already present. Otherwise Basic runs the full
// search and, on success, returns b with the point installed via
// SetCachedSample. On failure, Basic only marks b Empty when the search
// actually proved no integer point exists; if the search merely gave up
// on an unbounded dimension (see scanDim), b is returned unchanged with
// ok false, since calling MarkEmpty on a set that was never proven empty
// would corrupt it for every other handle sharing its storage (cow only
// clones when refs>1 — composite.go's MarkEmpty/cow). The returned
// *adt.BasicMap must replace the caller's handle, per the package's
// copy-on-write convention.
func Basic(b *adt.BasicMap) (out *adt.BasicMap, pt num.Row, ok bool) {
	if b.FastIsEmpty() {
		return b, nil, false
	}
	if v, found := b.CachedSample(); found {
		return b, trimToPoint(b, v), true
	}

	work := materializeDivs(b)
	full, found, proven := search(work)
	if !found {
		if proven {
			tag := uuid.NewString()
			out = b.MarkEmpty()
			generations.Store(out, tag)
			return out, nil, false
		}
		return b, nil, false
	}
	tag := uuid.NewString()
	out = b.SetCachedSample(full)
	generations.Store(out, tag)
	return out, trimToPoint(b, full), true
}

// trimToPoint narrows a full-width sample (including divs, per
// SetCachedSample's contract) to the ContainsPoint-style point (the
// leading constant plus the param/in/out dims, with divs left for
// ContainsPoint to recompute).
func trimToPoint(b *adt.BasicMap, full num.Row) num.Row {
	return full[:b.Space().Total()]
}

// materializeDivs returns a copy of b with every known div's floor
// definition expanded into the pair of inequalities that pins it exactly
// (0 <= Def - Denom*div < Denom), so the rest of this package can treat
// divs as ordinary integer unknowns rather than special-casing them.
func materializeDivs(b *adt.BasicMap) *adt.BasicMap {
	b = b.Copy()
	base := b.Space().Total()
	for i := 0; i < b.NDiv(); i++ {
		d := b.DivDef(i)
		if !d.Known() {
			continue
		}
		width := b.Width()
		divCol := base + i

		lower := make(num.Row, width)
		for j := range lower {
			lower[j] = num.Zero
		}
		copy(lower, d.Def)
		lower[divCol] = lower[divCol].Sub(d.Denom)
		b = addIneqRow(b, lower)

		upper := make(num.Row, width)
		for j := range upper {
			upper[j] = num.Zero
		}
		for c, v := range d.Def {
			upper[c] = v.Neg()
		}
		upper[0] = upper[0].Add(d.Denom).Sub(num.One)
		upper[divCol] = upper[divCol].Add(d.Denom)
		b = addIneqRow(b, upper)
	}
	return b
}

func addIneqRow(b *adt.BasicMap, row num.Row) *adt.BasicMap {
	b, idx := b.AddInequality()
	for c, v := range row {
		b.SetIneqCoeff(idx, c, v)
	}
	return b
}

// search implements spec §4.3 steps 1 and 4: compress away work's
// equalities (step 1), then scan the compressed dimensions depth-first
// (step 4), reconstructing a point of work's own space on success.
func search(work *adt.BasicMap) (num.Row, bool, bool) {
	n := work.Width() - 1
	a := mat.New(work.NEq(), n)
	bvec := make(num.Row, work.NEq())
	for i := 0; i < work.NEq(); i++ {
		row := work.Eq(i)
		for j := 0; j < n; j++ {
			a.Set(i, j, row[1+j])
		}
		bvec[i] = row[0]
	}

	x0, u, ok := mat.VariableCompress(a, bvec)
	if !ok {
		// No integer solution to the equalities at all: proven empty.
		return nil, false, true
	}
	k := u.Cols()
	uT := u.Transpose()

	projSpace := space.NewSet(0, k)
	proj := adt.Alloc(projSpace, 0, work.NIneq())
	for i := 0; i < work.NIneq(); i++ {
		row := work.Ineq(i)
		coefX := row[1:]
		dot0 := num.Dot(coefX, x0)
		newConst := row[0].Add(dot0)
		coefY := uT.MulVec(coefX)
		newRow := append(num.Row{newConst}, coefY...)
		proj = addIneqRow(proj, newRow)
	}

	y, found, proven := scanInteger(proj, k)
	if !found {
		return nil, false, proven
	}
	x := x0.Clone()
	x.AddScaled(num.One, u.MulVec(y))
	// x is laid out [params..., in..., out..., divs...] (n = Width()-1
	// entries, matching SetCachedSample's "full width, including divs"
	// contract once the leading constant is prepended).
	full := make(num.Row, work.Width())
	full[0] = num.One
	copy(full[1:], x)
	return full, true, true
}

// maxUnboundedScanSteps caps the number of candidate integer values tried
// in a dimension whose LP bound comes back Unbounded in some direction,
// so an unbounded dimension cannot make the scan run forever. Exhausting
// the cap without finding a point is inconclusive, not a proof of
// emptiness — see scanDim's proven return.
const maxUnboundedScanSteps = 4096

// scanInteger performs spec §4.3 step 4's depth-first scan over b's dims
// (0..dims-1), returning a point of length dims. proven reports whether
// a false found is an actual proof that b has no integer point (every
// dimension's LP bound was exact and every candidate it admitted was
// tried), as opposed to the scan giving up early on an unbounded
// dimension (isl_sample.c's recession-cone/shift_cone handling for this
// case is not ported here, per this package's doc comment; scanDim
// instead tries a capped window of candidates and refuses to call this
// inconclusive result a proof).
func scanInteger(b *adt.BasicMap, dims int) (num.Row, bool, bool) {
	if tab.Feasible(b) != tab.Ok {
		return nil, false, true
	}
	return scanDim(b, 0, dims, make(num.Row, dims))
}

func scanDim(b *adt.BasicMap, level, dims int, acc num.Row) (num.Row, bool, bool) {
	if level == dims {
		return acc, true, true
	}
	obj := make(num.Row, b.Width())
	for i := range obj {
		obj[i] = num.Zero
	}
	obj[level+1] = num.One

	ocMin, vMin, _, errMin := tab.Minimize(b, obj)
	ocMax, vMax, _, errMax := tab.Maximize(b, obj)
	if errMin != nil || errMax != nil {
		return nil, false, false
	}
	if ocMin == tab.EmptyResult || ocMax == tab.EmptyResult {
		// b itself was feasible (scanInteger checked), so an EmptyResult
		// here is this level's own numerical limit, not a proof.
		return nil, false, false
	}
	if ocMin == tab.ErrorResult || ocMax == tab.ErrorResult {
		return nil, false, false
	}

	vals, exact := candidateValues(ocMin, vMin, ocMax, vMax)
	proven := exact
	for _, v := range vals {
		pinned := pinDim(b, level, v)
		if tab.Feasible(pinned) != tab.Ok {
			continue
		}
		acc2 := acc.Clone()
		acc2[level] = v
		if pt, found, sub := scanDim(pinned, level+1, dims, acc2); found {
			return pt, true, true
		} else if !sub {
			proven = false
		}
	}
	return nil, false, proven
}

// candidateValues returns the integer values to try at a dimension whose
// LP bound in each direction is ocMin/vMin and ocMax/vMax (spec §4.3
// step 4). When both directions are exact (tab.Ok), it returns every
// integer in [ceil(vMin), floor(vMax)] and exact is true: trying and
// rejecting every one of these is a genuine proof of infeasibility at
// this dimension. When a direction is Unbounded, it instead walks out
// from the bounded side (or, if both directions are unbounded, out from
// zero in both directions) for up to maxUnboundedScanSteps candidates
// and reports exact as false, since giving up after the cap proves
// nothing.
func candidateValues(ocMin tab.Outcome, vMin tab.Rat, ocMax tab.Outcome, vMax tab.Rat) (vals []num.Int, exact bool) {
	switch {
	case ocMin == tab.Ok && ocMax == tab.Ok:
		lo, hi := vMin.Ceil(), vMax.Floor()
		for v := lo; v.Cmp(hi) <= 0; v = v.Add(num.One) {
			vals = append(vals, v)
		}
		return vals, true

	case ocMin == tab.Ok && ocMax == tab.Unbounded:
		v := vMin.Ceil()
		for i := 0; i < maxUnboundedScanSteps; i++ {
			vals = append(vals, v)
			v = v.Add(num.One)
		}
		return vals, false

	case ocMin == tab.Unbounded && ocMax == tab.Ok:
		v := vMax.Floor()
		for i := 0; i < maxUnboundedScanSteps; i++ {
			vals = append(vals, v)
			v = v.Sub(num.One)
		}
		return vals, false

	default: // both directions unbounded
		vals = append(vals, num.Zero)
		for i := 1; i < maxUnboundedScanSteps; i++ {
			step := num.FromInt64(int64((i + 1) / 2))
			if i%2 == 1 {
				vals = append(vals, step)
			} else {
				vals = append(vals, step.Neg())
			}
		}
		return vals, false
	}
}

func pinDim(b *adt.BasicMap, dim int, v num.Int) *adt.BasicMap {
	b = b.Copy()
	b, idx := b.AddEquality()
	b.SetEqCoeff(idx, 0, v.Neg())
	b.SetEqCoeff(idx, dim+1, num.One)
	return b
}
