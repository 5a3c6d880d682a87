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

// Package adt implements spec component C4: the basic map/basic set, the
// pervasive entity of the whole engine — a conjunction of equalities,
// inequalities and existentially quantified divs over a space.Space.
//
// Lifecycle follows spec §3: every constructor returns a value with
// RefCount()==1; Copy increments and returns the same handle (this is a
// garbage-collected language, so "free" is bookkeeping, not deallocation);
// any mutating operation calls cow() first, which clones iff the refcount
// is above 1, per the copy-on-write discipline of spec §5.
package adt

import (
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// Flags is the bitset of spec §3's basic-map flags. Each flag documents
// the invariant that mutating the structure must clear.
type Flags uint32

const (
	// Empty marks a basic map known to have no points. Invariant: a
	// contradictory equality (const=1, rest=0) is present among Eqs.
	Empty Flags = 1 << iota
	// Final marks a structure that must not be mutated in place; cow()
	// clears it whenever copy-on-write clones.
	Final
	// NoImplicit marks that detect_implicit_equalities (tab) has already
	// been run and found nothing further to promote.
	NoImplicit
	// NoRedundant marks that detect_redundant (tab) has already removed
	// every redundant inequality.
	NoRedundant
	// Rational marks a relaxation where integrality is not required.
	Rational
	// Normalized marks that normalize_constraints has been run and no
	// mutation has invalidated it since.
	Normalized
	// NormalizedDivs marks that normalize_divs's canonical form holds.
	NormalizedDivs
	// AllEqualities marks a basic map all of whose inequalities are in
	// fact equalities (both f>=0 and -f>=0 present).
	AllEqualities
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Div is one existentially quantified div definition, representing
// floor((Def . [1;x;div_<k]) / Denom). Denom == 0 marks an "unknown" div
// (spec §3): its value is unconstrained beyond appearing in the space.
type Div struct {
	Denom num.Int
	Def   num.Row
}

func (d Div) Known() bool { return !d.Denom.IsZero() }

func (d Div) clone() Div {
	return Div{Denom: d.Denom, Def: d.Def.Clone()}
}

// BasicMap is spec §3's basic map / basic set. A value with NIn()==0 is a
// basic set (spec §3: "For a basic set, i=0 and 'set dims' occupy the o
// slot").
type BasicMap struct {
	refs  int32
	space space.Space
	flags Flags

	eqs   []num.Row
	ineqs []num.Row
	divs  []Div

	sample num.Row // cached integer sample, nil if none computed yet
}

// Alloc returns an empty (universe) basic map over sp with room
// reserved, but not yet filled, for nEq equalities and nIneq
// inequalities (spec §4.1's alloc). Rows are added with AddEquality /
// AddInequality.
func Alloc(sp space.Space, nEq, nIneq int) *BasicMap {
	b := &BasicMap{refs: 1, space: sp}
	if nEq > 0 {
		b.eqs = make([]num.Row, 0, nEq)
	}
	if nIneq > 0 {
		b.ineqs = make([]num.Row, 0, nIneq)
	}
	return b
}

// Universe returns the basic map over sp with no constraints at all.
func Universe(sp space.Space) *BasicMap { return Alloc(sp, 0, 0) }

// EmptySet returns the (already marked) empty basic map over sp: a single
// contradictory equality 1=0, matching invariant (ii) of spec §3.
func EmptySet(sp space.Space) *BasicMap {
	b := Alloc(sp, 1, 0)
	row := b.zeroRow()
	row[0] = num.One
	b.eqs = append(b.eqs, row)
	b.flags |= Empty
	return b
}

// Space returns b's space.
func (b *BasicMap) Space() space.Space { return b.space }

// Width returns the current row width: space.Total() + len(divs).
func (b *BasicMap) Width() int { return b.space.Total() + len(b.divs) }

func (b *BasicMap) zeroRow() num.Row {
	r := make(num.Row, b.Width())
	for i := range r {
		r[i] = num.Zero
	}
	return r
}

func (b *BasicMap) NEq() int   { return len(b.eqs) }
func (b *BasicMap) NIneq() int { return len(b.ineqs) }
func (b *BasicMap) NDiv() int  { return len(b.divs) }

func (b *BasicMap) Eq(i int) num.Row   { return b.eqs[i] }
func (b *BasicMap) Ineq(i int) num.Row { return b.ineqs[i] }
func (b *BasicMap) DivDef(i int) Div   { return b.divs[i] }

func (b *BasicMap) Flags() Flags { return b.flags }

// RefCount reports the current reference count; it exists to make spec
// §8's lifecycle property ("copy(B).free() leaves B's refcount
// unchanged") directly testable.
func (b *BasicMap) RefCount() int32 { return b.refs }

// Copy increments b's refcount and returns the same handle (spec §3:
// "every copy increments"). The pointer identity is shared: this is the
// Go analog of incrementing an isl refcount, not a deep clone — cow below
// is what performs the clone, lazily, on first mutation.
func (b *BasicMap) Copy() *BasicMap {
	b.refs++
	return b
}

// Free decrements b's refcount (spec §3: "every free decrements and
// deallocates at zero"). In a garbage-collected runtime there is nothing
// further to do at zero; Free exists so the refcount itself stays
// testable and so call sites read the same as the C original.
func (b *BasicMap) Free() {
	if b == nil {
		return
	}
	b.refs--
}

// cow returns a handle safe to mutate in place: b itself if refs<=1
// (Final is cleared), or a fresh clone with refs==1 otherwise (b's
// refcount is decremented, as the caller's reference to b is considered
// consumed by the mutating operation, per spec §3).
func (b *BasicMap) cow() *BasicMap {
	if b.refs <= 1 {
		b.flags &^= Final
		return b
	}
	clone := b.clone()
	b.refs--
	clone.refs = 1
	return clone
}

func (b *BasicMap) clone() *BasicMap {
	out := &BasicMap{refs: 1, space: b.space, flags: b.flags &^ Final}
	if b.eqs != nil {
		out.eqs = make([]num.Row, len(b.eqs))
		for i, r := range b.eqs {
			out.eqs[i] = r.Clone()
		}
	}
	if b.ineqs != nil {
		out.ineqs = make([]num.Row, len(b.ineqs))
		for i, r := range b.ineqs {
			out.ineqs[i] = r.Clone()
		}
	}
	if b.divs != nil {
		out.divs = make([]Div, len(b.divs))
		for i, d := range b.divs {
			out.divs[i] = d.clone()
		}
	}
	if b.sample != nil {
		out.sample = b.sample.Clone()
	}
	return out
}

// Finalize sets the Final flag (spec §4.1's finalize).
func (b *BasicMap) Finalize() *BasicMap {
	b = b.cow()
	b.flags |= Final
	return b
}

// AddEquality reserves a new, zeroed equality row and returns (the
// possibly-cloned handle, the row's index); the caller fills the row in
// through Eq(idx) / SetEqCoeff.
func (b *BasicMap) AddEquality() (*BasicMap, int) {
	b = b.cow()
	b.invalidateDerived()
	idx := len(b.eqs)
	b.eqs = append(b.eqs, b.zeroRow())
	return b, idx
}

// AddInequality is AddEquality for an inequality row.
func (b *BasicMap) AddInequality() (*BasicMap, int) {
	b = b.cow()
	b.invalidateDerived()
	idx := len(b.ineqs)
	b.ineqs = append(b.ineqs, b.zeroRow())
	return b, idx
}

// SetEqCoeff and SetIneqCoeff let callers fill in a reserved row.
func (b *BasicMap) SetEqCoeff(row int, col int, v num.Int)   { b.eqs[row][col] = v }
func (b *BasicMap) SetIneqCoeff(row int, col int, v num.Int) { b.ineqs[row][col] = v }

// invalidateDerived clears flags/caches that a structural mutation can no
// longer guarantee, matching the CoW discipline's "mutation ... clears
// the FINAL flag" note generalized to the other derived flags.
func (b *BasicMap) invalidateDerived() {
	b.flags &^= NoImplicit | NoRedundant | Normalized | NormalizedDivs | Final
	b.sample = nil
}

// DropEquality removes equality row k, permuting the remaining rows down
// (spec §4.1's drop_equality).
func (b *BasicMap) DropEquality(k int) *BasicMap {
	b = b.cow()
	b.invalidateDerived()
	b.eqs = append(b.eqs[:k], b.eqs[k+1:]...)
	return b
}

// DropInequality is DropEquality for an inequality row.
func (b *BasicMap) DropInequality(k int) *BasicMap {
	b = b.cow()
	b.invalidateDerived()
	b.ineqs = append(b.ineqs[:k], b.ineqs[k+1:]...)
	return b
}

// InequalityToEquality promotes inequality k to an equality (spec
// §4.1): used once detect_implicit_equalities (tab) proves it is tight
// everywhere.
func (b *BasicMap) InequalityToEquality(k int) *BasicMap {
	b = b.cow()
	row := b.ineqs[k]
	b.ineqs = append(b.ineqs[:k], b.ineqs[k+1:]...)
	b.eqs = append(b.eqs, row)
	b.flags &^= NoImplicit
	return b
}

// AddDiv appends a new, initially-unknown div (Denom==0) and widens every
// existing row by one zero column, returning the new div's index.
func (b *BasicMap) AddDiv() (*BasicMap, int) {
	b = b.cow()
	b.invalidateDerived()
	idx := len(b.divs)
	b.divs = append(b.divs, Div{Denom: num.Zero, Def: make(num.Row, b.space.Total()+idx)})
	widen := func(rows []num.Row) {
		for i, r := range rows {
			nr := make(num.Row, len(r)+1)
			copy(nr, r)
			nr[len(nr)-1] = num.Zero
			rows[i] = nr
		}
	}
	widen(b.eqs)
	widen(b.ineqs)
	for i := range b.divs {
		if i == idx {
			continue
		}
		if len(b.divs[i].Def) < b.space.Total()+idx+1 {
			nr := make(num.Row, b.space.Total()+idx+1)
			copy(nr, b.divs[i].Def)
			b.divs[i].Def = nr
		}
	}
	return b, idx
}

// SetDiv replaces div k's definition wholesale.
func (b *BasicMap) SetDiv(k int, denom num.Int, def num.Row) *BasicMap {
	b = b.cow()
	b.divs[k] = Div{Denom: denom, Def: def.Clone()}
	b.flags &^= NormalizedDivs
	return b
}

// DropDiv removes div k, which must not be referenced by any row (callers
// project/substitute it away first via eliminate_divs_eq/ineq or
// eliminate_vars).
func (b *BasicMap) DropDiv(k int) *BasicMap {
	b = b.cow()
	col := b.space.Total() + k
	shrink := func(rows []num.Row) {
		for i, r := range rows {
			if !r[col].IsZero() {
				fault("DropDiv", "div %d is still referenced", k)
			}
			rows[i] = append(r[:col], r[col+1:]...)
		}
	}
	shrink(b.eqs)
	shrink(b.ineqs)
	for i := range b.divs {
		if len(b.divs[i].Def) > col {
			b.divs[i].Def = append(b.divs[i].Def[:col], b.divs[i].Def[col+1:]...)
		}
	}
	b.divs = append(b.divs[:k], b.divs[k+1:]...)
	b.invalidateDerived()
	return b
}

// MarkEmpty sets the Empty flag and installs the canonical contradiction,
// matching invariant (ii) of spec §3.
func (b *BasicMap) MarkEmpty() *BasicMap {
	b = b.cow()
	if b.flags.Has(Empty) {
		return b
	}
	row := b.zeroRow()
	row[0] = num.One
	b.eqs = []num.Row{row}
	b.ineqs = nil
	b.flags |= Empty
	b.sample = nil
	return b
}

// IsEmpty reports whether b has no points. Unlike FastIsEmpty, this may
// run simplify() to find out.
func (b *BasicMap) IsEmpty() bool {
	if b.flags.Has(Empty) {
		return true
	}
	s := b.Copy().Simplify()
	return s.flags.Has(Empty)
}

// FastIsEmpty reports the Empty flag only, per spec §4.1.
func (b *BasicMap) FastIsEmpty() bool { return b.flags.Has(Empty) }

// IsUniverse reports whether b has no constraints at all (the full
// space).
func (b *BasicMap) IsUniverse() bool {
	return !b.flags.Has(Empty) && len(b.eqs) == 0 && len(b.ineqs) == 0
}

// ContainsPoint reports whether v (laid out per spec §3, without the
// trailing div columns) satisfies every equality and inequality of b,
// after computing the divs' values from v.
func (b *BasicMap) ContainsPoint(v num.Row) bool {
	full := make(num.Row, b.Width())
	copy(full, v)
	base := b.space.Total()
	for i, d := range b.divs {
		if !d.Known() {
			fault("ContainsPoint", "div %d is unknown", i)
		}
		val := num.Dot(d.Def, full[:len(d.Def)])
		full[base+i] = val.FloorDiv(d.Denom)
	}
	for _, r := range b.eqs {
		if !num.Dot(r, full).IsZero() {
			return false
		}
	}
	for _, r := range b.ineqs {
		if num.Dot(r, full).IsNegative() {
			return false
		}
	}
	return true
}

// CachedSample returns a previously computed integer sample, if any.
func (b *BasicMap) CachedSample() (num.Row, bool) {
	if b.sample == nil {
		return nil, false
	}
	return b.sample, true
}

// SetCachedSample stores v (full width, including divs) for reuse by
// later containment/emptiness queries (spec §4.3: "a sample found is
// cached on the basic set").
func (b *BasicMap) SetCachedSample(v num.Row) *BasicMap {
	b = b.cow()
	b.sample = v.Clone()
	return b
}
