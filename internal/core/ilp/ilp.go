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

// Package ilp implements spec component C7: minimizing/maximizing an
// affine form over a basic set in the integers, layered on package tab's
// rational LP solver.
//
// isl_ilp.c's own strategy — round the LP-relaxed optimum to the nearest
// integer box corner before falling back to a full integer search — is
// followed here close to verbatim (see roundToContainedCorner and the
// probe loop in Maximize): full parametric integer programming belongs to
// package pip (C10) and full unbounded integer sampling to package sample
// (C8); this package only ever has to integer-round the vertex of an
// already-built rational LP, which is why it can stay a thin layer over
// tab instead of pulling in either of those.
package ilp

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/pkg/errors"
)

// maxCorners bounds the unit-box corner enumeration: beyond this many
// fractional coordinates, only the all-floor and all-ceil corners are
// tried rather than the full 2^n set.
const maxCorners = 20

// maxProbe bounds the fallback integer-value probe below the LP bound
// when the LP vertex's own unit box contains no feasible integer point.
const maxProbe = 64

// Maximize returns the integer optimum of obj (laid out like a
// constraint row: [const, param..., in..., out..., div...]) over b. Point
// is laid out per adt.(*BasicMap).ContainsPoint's convention: [const,
// param..., in..., out...], without div columns.
func Maximize(b *adt.BasicMap, obj num.Row) (tab.Outcome, num.Int, num.Row, error) {
	oc, v, pt, err := tab.Maximize(b, obj)
	if oc != tab.Ok {
		return oc, num.Zero, nil, err
	}

	if corner, ok := roundToContainedCorner(b, pt); ok {
		return tab.Ok, dotFull(b, obj, corner), corner, nil
	}

	hi := v.Floor()
	for step := 0; step < maxProbe; step++ {
		target := hi.Sub(num.FromInt64(int64(step)))
		slice := pinObjective(b, obj, target)
		if tab.Feasible(slice) != tab.Ok {
			continue
		}
		_, _, slicePt, err := tab.Maximize(slice, obj)
		if err != nil {
			return tab.ErrorResult, num.Zero, nil, err
		}
		if slicePt == nil {
			continue
		}
		if corner, ok := roundToContainedCorner(b, slicePt); ok {
			return tab.Ok, dotFull(b, obj, corner), corner, nil
		}
	}
	return tab.ErrorResult, num.Zero, nil,
		errors.Errorf("ilp: Maximize: no integer point found within %d probes below the LP bound %s", maxProbe, v)
}

// Minimize is Maximize over the negated objective.
func Minimize(b *adt.BasicMap, obj num.Row) (tab.Outcome, num.Int, num.Row, error) {
	oc, v, pt, err := Maximize(b, negateRow(obj))
	if oc != tab.Ok {
		return oc, num.Zero, pt, err
	}
	return tab.Ok, v.Neg(), pt, nil
}

func negateRow(r num.Row) num.Row {
	out := make(num.Row, len(r))
	for i, v := range r {
		out[i] = v.Neg()
	}
	return out
}

// pinObjective returns b intersected with { obj == target }, used to
// probe for an integer point achieving a specific objective value.
func pinObjective(b *adt.BasicMap, obj num.Row, target num.Int) *adt.BasicMap {
	b = b.Copy()
	var idx int
	b, idx = b.AddEquality()
	for c, v := range obj {
		if c == 0 {
			v = v.Sub(target)
		}
		b.SetEqCoeff(idx, c, v)
	}
	return b
}

// roundToContainedCorner tries every corner of the unit box around pt
// (fixing coordinates already integral, branching floor/ceil on the
// rest), returning the first one adt.(*BasicMap).ContainsPoint accepts.
//
// pt holds one entry per tableau structural variable, which (per
// tab.build) includes b's divs; only the leading param/in/out portion —
// ContainsPoint's own point convention — is branched on, since a div's
// value is always a deterministic function of the rest, never a free
// choice.
func roundToContainedCorner(b *adt.BasicMap, pt tab.Vector) (num.Row, bool) {
	pt = pt[:b.Space().Total()-1]
	k := len(pt)
	floors := make([]num.Int, k)
	var frac []int
	for i, r := range pt {
		floors[i] = r.Floor()
		if !r.IsInteger() {
			frac = append(frac, i)
		}
	}

	total := b.Space().Total()
	try := func(assign []num.Int) (num.Row, bool) {
		row := make(num.Row, total)
		row[0] = num.One
		copy(row[1:], assign)
		if b.ContainsPoint(row) {
			return row, true
		}
		return nil, false
	}

	if len(frac) == 0 {
		return try(floors)
	}
	if len(frac) > maxCorners {
		ceilAll := append([]num.Int(nil), floors...)
		for _, i := range frac {
			ceilAll[i] = ceilAll[i].Add(num.One)
		}
		if p, ok := try(floors); ok {
			return p, true
		}
		return try(ceilAll)
	}
	n := len(frac)
	for mask := 0; mask < (1 << uint(n)); mask++ {
		cand := append([]num.Int(nil), floors...)
		for bit := 0; bit < n; bit++ {
			if mask&(1<<uint(bit)) != 0 {
				cand[frac[bit]] = cand[frac[bit]].Add(num.One)
			}
		}
		if p, ok := try(cand); ok {
			return p, true
		}
	}
	return nil, false
}

// dotFull extends a ContainsPoint-shaped point with its div values (the
// same computation ContainsPoint does internally) and returns obj's value
// there, so the reported objective reflects any div coefficients in obj.
func dotFull(b *adt.BasicMap, obj, point num.Row) num.Int {
	full := make(num.Row, b.Width())
	copy(full, point)
	base := b.Space().Total()
	for i := 0; i < b.NDiv(); i++ {
		d := b.DivDef(i)
		val := num.Dot(d.Def, full[:len(d.Def)])
		full[base+i] = val.FloorDiv(d.Denom)
	}
	return num.Dot(obj, full)
}
