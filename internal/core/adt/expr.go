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

package adt

import (
	"github.com/mpvl/unique"

	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// rowSlice adapts a []num.Row to sort.Interface so unique.Sort can order
// and collapse it in place: rows compare lexicographically (rowLess),
// and unique.Sort takes !Less(i,j) && !Less(j,i) between sorted
// neighbors as equality, which is exactly rowEqual for this ordering.
type rowSlice []num.Row

func (s rowSlice) Len() int           { return len(s) }
func (s rowSlice) Less(i, j int) bool { return rowLess(s[i], s[j]) }
func (s rowSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// dedupRows sorts rows lexicographically and collapses adjacent
// duplicates via github.com/mpvl/unique's Sort, the sort-then-collapse
// helper the teacher's go.mod carries this dependency for.
func dedupRows(rows []num.Row) []num.Row {
	if len(rows) < 2 {
		return rows
	}
	k := unique.Sort(rowSlice(rows))
	return rows[:k]
}

func rowLess(a, b num.Row) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := a[i].Cmp(b[i]); c != 0 {
			return c < 0
		}
	}
	return len(a) < len(b)
}

func rowEqual(a, b num.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}

// Gauss reduces the equalities to reduced row-echelon form, pivoting from
// the last column backward so divs are eliminated before set/in/out
// dimensions and those before parameters (spec §4.1's gauss: "last-column
// pivots are preferred so divs are eliminated first"). A trailing
// contradictory row (nonzero constant, zero elsewhere) marks b Empty.
func (b *BasicMap) Gauss() *BasicMap {
	b = b.cow()
	rows := b.eqs
	width := b.Width()
	pivotRow := 0
	for col := width - 1; col >= 1 && pivotRow < len(rows); col-- {
		// find a row >= pivotRow with a nonzero entry at col
		sel := -1
		for i := pivotRow; i < len(rows); i++ {
			if !rows[i][col].IsZero() {
				sel = i
				break
			}
		}
		if sel == -1 {
			continue
		}
		rows[pivotRow], rows[sel] = rows[sel], rows[pivotRow]
		pivot := rows[pivotRow]
		for i := range rows {
			if i == pivotRow || rows[i][col].IsZero() {
				continue
			}
			c, d := pivot[col], rows[i][col]
			g, x, y := c.ExtGCD(d)
			a1, _ := d.ExactDiv(g)
			a2, _ := c.ExactDiv(g)
			newPivot := combine(pivot, rows[i], x, y)
			newOther := combine(pivot, rows[i], a1, a2.Neg())
			rows[pivotRow] = newPivot
			rows[i] = newOther
			pivot = rows[pivotRow]
		}
		if pivot[col].IsNegative() {
			pivot.Negate()
		}
		pivotRow++
	}
	var kept []num.Row
	for i, r := range rows {
		if i < pivotRow {
			kept = append(kept, r)
			continue
		}
		if r.IsZero() {
			continue // trivial 0=0, drop
		}
		nonConstZero := true
		for _, v := range r[1:] {
			if !v.IsZero() {
				nonConstZero = false
				break
			}
		}
		if nonConstZero && !r[0].IsZero() {
			return b.MarkEmpty()
		}
		kept = append(kept, r) // shouldn't normally happen once all columns processed
	}
	b.eqs = kept
	return b
}

// Simplify runs the structural (tableau-free) part of spec §4.1's
// simplify: normalize_constraints, eliminate_divs_eq, eliminate_divs_ineq,
// gauss, normalize_divs, remove_duplicate_divs and
// remove_duplicate_constraints, iterated to a fixed point (spec §9's open
// question on eliminate_divs_ineq/remove_duplicate_divs ordering is
// resolved as eliminate-then-dedup: a dedup pass before elimination can't
// observe the divs elimination is about to remove). The tableau-based
// passes — detecting implicit equalities and redundant inequalities —
// need package tab's LP solver, which itself builds on package adt, so
// they live there (tab.DetectImplicitEqualities, tab.DetectRedundant)
// and are called directly by hull, pip, cmd/isl and the isl facade;
// IsEmpty only needs this structural half to recognize a syntactic
// contradiction.
func (b *BasicMap) Simplify() *BasicMap {
	if b.flags.Has(Empty) {
		return b
	}
	b = b.cow()
	for {
		neq, nineq, ndiv := b.NEq(), b.NIneq(), b.NDiv()
		b = b.Gauss()
		if b.flags.Has(Empty) {
			return b
		}
		if nb, did := b.eliminateDivsEq(); did {
			b = nb
		}
		if nb, did := b.eliminateDivsIneq(); did {
			b = nb
		}
		b = b.NormalizeConstraints()
		if b.flags.Has(Empty) {
			return b
		}
		b = b.normalizeDivs()
		if nb, did := b.removeRedundantDivs(); did {
			b = nb
		}
		b = b.RemoveDuplicateConstraints()
		if nb, did := b.removeDuplicateDivs(); did {
			b = nb
		}
		if b.NEq() == neq && b.NIneq() == nineq && b.NDiv() == ndiv {
			break
		}
	}
	return b
}

// eliminateDivsEq implements spec §4.1's eliminate_divs_eq: a div that
// appears with coefficient ±1 in some equality is pinned exactly by that
// equality (gauss's own pivoting prefers div columns but only reduces
// them to a pivot row, never removing the column), so it can be
// substituted away everywhere via eliminateColumn's equality branch and
// dropped, shrinking the space instead of just the row count. Reports
// whether a div was eliminated, since only one is eliminated per call —
// Simplify's fixed point calls it again next iteration to find more.
func (b *BasicMap) eliminateDivsEq() (*BasicMap, bool) {
	for k := 0; k < b.NDiv(); k++ {
		if b.divColumnUsedByOtherDiv(k) {
			continue
		}
		col := b.space.Total() + k
		for _, e := range b.eqs {
			if e[col].IsOne() || e[col].IsNegOne() {
				b = b.eliminateDiv(k)
				return b, true
			}
		}
	}
	return b, false
}

// divColumnUsedByOtherDiv reports whether some div other than k refers to
// div k in its own definition. removeColumn (which eliminateDiv relies
// on) drops a column from every Def row without substituting the
// eliminated value back in, so eliminating a div still referenced by
// another div's definition would silently discard that dependency;
// eliminate_divs_eq/ineq only fire once no other div depends on k.
func (b *BasicMap) divColumnUsedByOtherDiv(k int) bool {
	col := b.space.Total() + k
	for i, d := range b.divs {
		if i == k || col >= len(d.Def) {
			continue
		}
		if !d.Def[col].IsZero() {
			return true
		}
	}
	return false
}

// eliminateDivsIneq implements spec §4.1's eliminate_divs_ineq: a div
// not mentioned in any equality, and bounded on both sides by
// inequalities whose only nonzero coefficients for it are ±1, is pinned
// tightly enough that Fourier-Motzkin elimination needs no scaling —
// each combination sums a +1 row with a -1 row directly — and so
// contributes no integer "hole". A div bounded only on one side is left
// alone: its explicit inequalities don't capture its floor definition
// (that lives in the Div struct, not in b.eqs/b.ineqs), so eliminating it
// as if it were an ordinary free variable would silently drop whatever
// the other side's bound was encoding.
func (b *BasicMap) eliminateDivsIneq() (*BasicMap, bool) {
	for k := 0; k < b.NDiv(); k++ {
		if b.divColumnUsedByOtherDiv(k) {
			continue
		}
		col := b.space.Total() + k
		boundedByEq := false
		for _, e := range b.eqs {
			if !e[col].IsZero() {
				boundedByEq = true
				break
			}
		}
		if boundedByEq {
			continue
		}
		hasPos, hasNeg, safe := false, false, true
		for _, r := range b.ineqs {
			v := r[col]
			switch {
			case v.IsZero():
				continue
			case v.IsOne():
				hasPos = true
			case v.IsNegOne():
				hasNeg = true
			default:
				safe = false
			}
		}
		if !safe || !hasPos || !hasNeg {
			continue
		}
		b = b.eliminateDiv(k)
		return b, true
	}
	return b, false
}

// eliminateDiv eliminates div k's column the same way eliminateColumn
// eliminates any other column (substitution or Fourier-Motzkin), then
// drops the now-unreferenced Div entry itself — removeColumn only
// narrows existing rows, it has no notion of which column was a div, so
// callers that eliminate a div must shrink b.divs afterward, mirroring
// DropDiv.
func (b *BasicMap) eliminateDiv(k int) *BasicMap {
	b = b.cow()
	col := b.space.Total() + k
	b = b.eliminateColumn(col)
	b.divs = append(b.divs[:k], b.divs[k+1:]...)
	return b
}

// removeRedundantDivs implements spec §4.1's remove_redundant_divs: a div
// referenced by no row and no other div's definition — only its own Div
// bookkeeping — constrains nothing and can be dropped outright; this is
// exactly DropDiv's own precondition.
func (b *BasicMap) removeRedundantDivs() (*BasicMap, bool) {
	for k := 0; k < b.NDiv(); k++ {
		if b.divColumnUsedByOtherDiv(k) {
			continue
		}
		col := b.space.Total() + k
		used := false
		for _, e := range b.eqs {
			if !e[col].IsZero() {
				used = true
				break
			}
		}
		if !used {
			for _, r := range b.ineqs {
				if !r[col].IsZero() {
					used = true
					break
				}
			}
		}
		if !used {
			b = b.DropDiv(k)
			return b, true
		}
	}
	return b, false
}

// normalizeDivs implements spec §4.1's normalize_divs: a div definition
// floor(Def·x/Denom) is equivalent to floor((Def/g)·x/(Denom/g)) for any
// common divisor g of Denom and every entry of Def, since the ratio
// Def·x/Denom is unchanged — g cancels exactly, not just approximately —
// so dividing it out is the canonical (lowest-terms) form. Sets
// NormalizedDivs once every div is in this form, mirroring how
// NormalizeConstraints sets Normalized unconditionally at the end.
func (b *BasicMap) normalizeDivs() *BasicMap {
	b = b.cow()
	for k, d := range b.divs {
		if !d.Known() {
			continue
		}
		g := d.Denom.Abs()
		for _, v := range d.Def {
			if g.IsOne() {
				break
			}
			g = g.Gcd(v)
		}
		if g.IsOne() || g.IsZero() {
			continue
		}
		nd, _ := d.Denom.ExactDiv(g)
		def := d.Def.Clone()
		for i, v := range def {
			def[i], _ = v.ExactDiv(g)
		}
		b.divs[k] = Div{Denom: nd, Def: def}
	}
	b.flags |= NormalizedDivs
	return b
}

// removeDuplicateDivs implements spec §4.1's remove_duplicate_divs: two
// divs with identical (Denom, Def) denote the same existentially
// quantified value, so the two are pinned equal by a fresh
// unit-coefficient equality, and eliminateDivsEq's exact substitution
// path, which takes the first div with a unit coefficient, eliminates the
// earlier one on the very next fixed-point iteration — RemoveDuplicateConstraints' dedup can't collapse them
// itself since they occupy distinct columns, not distinct rows.
func (b *BasicMap) removeDuplicateDivs() (*BasicMap, bool) {
	for j := 1; j < b.NDiv(); j++ {
		dj := b.divs[j]
		if !dj.Known() {
			continue
		}
		for i := 0; i < j; i++ {
			di := b.divs[i]
			if !di.Known() || !sameDiv(di, dj) {
				continue
			}
			b = b.cow()
			var idx int
			b, idx = b.AddEquality()
			coli, colj := b.space.Total()+i, b.space.Total()+j
			b.SetEqCoeff(idx, coli, num.MinusOne)
			b.SetEqCoeff(idx, colj, num.One)
			return b, true
		}
	}
	return b, false
}

// combine returns alpha*r + beta*s, a freshly allocated row.
func combine(r, s num.Row, alpha, beta num.Int) num.Row {
	out := make(num.Row, len(r))
	for i := range r {
		out[i] = alpha.Mul(r[i]).Add(beta.Mul(s[i]))
	}
	return out
}

// NormalizeConstraints divides each row by the GCD of its non-constant
// coefficients (spec §4.1): an equality whose constant is not divisible
// becomes Empty; an inequality's constant is floor-divided instead.
func (b *BasicMap) NormalizeConstraints() *BasicMap {
	b = b.cow()
	var eqs []num.Row
	for _, r := range b.eqs {
		g := r.GcdNonConst(1)
		if g.IsZero() {
			if !r[0].IsZero() {
				return b.MarkEmpty()
			}
			continue
		}
		q, exact := r[0].ExactDiv(g)
		if !exact {
			return b.MarkEmpty()
		}
		nr := r.Clone()
		for i := 1; i < len(nr); i++ {
			v, _ := nr[i].ExactDiv(g)
			nr[i] = v
		}
		nr[0] = q
		eqs = append(eqs, nr)
	}
	var ineqs []num.Row
	for _, r := range b.ineqs {
		g := r.GcdNonConst(1)
		if g.IsZero() {
			if r[0].IsNegative() {
				return b.MarkEmpty()
			}
			continue // trivially true, drop
		}
		nr := r.Clone()
		for i := 1; i < len(nr); i++ {
			v, _ := nr[i].ExactDiv(g)
			nr[i] = v
		}
		nr[0] = nr[0].FloorDiv(g)
		ineqs = append(ineqs, nr)
	}
	b.eqs, b.ineqs = eqs, ineqs
	b.flags |= Normalized
	return b
}

// RemoveDuplicateConstraints drops syntactically identical rows (after
// NormalizeConstraints they compare exactly), using
// github.com/mpvl/unique to sort-then-collapse each list — the same
// dedup idiom the teacher's go.mod carries the dependency for.
func (b *BasicMap) RemoveDuplicateConstraints() *BasicMap {
	b = b.cow()
	b.eqs = dedupRows(b.eqs)
	b.ineqs = dedupRows(b.ineqs)
	return b
}

// eliminateColumn removes column col from every row (eqs, ineqs and div
// definitions), after first eliminating the variable it represents: by
// substitution through an equality if one mentions it, otherwise by
// Fourier-Motzkin combination of the inequalities that bound it from
// above and below (spec §4.1's eliminate_vars).
func (b *BasicMap) eliminateColumn(col int) *BasicMap {
	for i, e := range b.eqs {
		if e[col].IsZero() {
			continue
		}
		c := e[col]
		for j := range b.eqs {
			if j == i || b.eqs[j][col].IsZero() {
				continue
			}
			d := b.eqs[j][col]
			alpha, beta := c.Abs(), negSign(c).Mul(d)
			b.eqs[j] = combine(b.eqs[j], e, alpha, beta)
		}
		for j := range b.ineqs {
			if b.ineqs[j][col].IsZero() {
				continue
			}
			d := b.ineqs[j][col]
			alpha, beta := c.Abs(), negSign(c).Mul(d)
			b.ineqs[j] = combine(b.ineqs[j], e, alpha, beta)
		}
		b.eqs = append(b.eqs[:i], b.eqs[i+1:]...)
		b.removeColumn(col)
		return b
	}

	var posRows, negRows, zeroRows []num.Row
	for _, r := range b.ineqs {
		switch {
		case r[col].IsPositive():
			posRows = append(posRows, r)
		case r[col].IsNegative():
			negRows = append(negRows, r)
		default:
			zeroRows = append(zeroRows, r)
		}
	}
	out := append([]num.Row{}, zeroRows...)
	for _, p := range posRows {
		for _, n := range negRows {
			alpha, beta := n[col].Neg(), p[col]
			out = append(out, combine(p, n, alpha, beta))
		}
	}
	b.ineqs = out
	b.removeColumn(col)
	return b
}

func negSign(v num.Int) num.Int {
	if v.IsNegative() {
		return num.One
	}
	return num.MinusOne
}

// removeColumn deletes column col from every row of b (eqs, ineqs, div
// definitions that are wide enough to hold it) without adjusting
// b.space — callers that eliminate a named dimension (ProjectOut) are
// responsible for updating the space and, if col falls among the div
// columns, for shrinking b.divs itself (DropDiv).
func (b *BasicMap) removeColumn(col int) {
	drop := func(r num.Row) num.Row {
		if col >= len(r) {
			return r
		}
		return append(r[:col:col], r[col+1:]...)
	}
	for i, r := range b.eqs {
		b.eqs[i] = drop(r)
	}
	for i, r := range b.ineqs {
		b.ineqs[i] = drop(r)
	}
	for i, d := range b.divs {
		b.divs[i].Def = drop(d.Def)
	}
	b.invalidateDerived()
}

// EliminateVars eliminates the n dimensions starting at absolute column
// pos (spec §4.1's eliminate_vars), shrinking every row's width by n.
// pos/n must address param/in/out columns, not div columns.
func (b *BasicMap) EliminateVars(pos, n int) *BasicMap {
	b = b.cow()
	for i := 0; i < n; i++ {
		b = b.eliminateColumn(pos)
	}
	return b
}

// ProjectOut removes n dimensions of kind k starting at index first,
// first eliminating them (spec §4.1's project_out) and then shrinking the
// space accordingly.
func (b *BasicMap) ProjectOut(k space.Kind, first, n int) *BasicMap {
	if n == 0 {
		return b
	}
	b = b.cow()
	pos := b.space.Offset(k) + first
	b = b.EliminateVars(pos, n)
	b.space = shrinkSpace(b.space, k, n)
	return b
}

func shrinkSpace(s space.Space, k space.Kind, n int) space.Space {
	switch k {
	case space.Param:
		return space.New(s.NParam()-n, s.NIn(), s.NOut())
	case space.In:
		return space.New(s.NParam(), s.NIn()-n, s.NOut())
	case space.Out:
		return space.New(s.NParam(), s.NIn(), s.NOut()-n)
	}
	panic("adt: shrinkSpace: invalid kind")
}

// AddDims appends n new, unconstrained dimensions of kind k.
func (b *BasicMap) AddDims(k space.Kind, n int) *BasicMap {
	if n == 0 {
		return b
	}
	b = b.cow()
	at := b.space.Offset(k) + b.space.Dim(k)
	b.insertColumns(at, n)
	switch k {
	case space.Param:
		b.space = space.New(b.space.NParam()+n, b.space.NIn(), b.space.NOut())
	case space.In:
		b.space = space.New(b.space.NParam(), b.space.NIn()+n, b.space.NOut())
	case space.Out:
		b.space = space.New(b.space.NParam(), b.space.NIn(), b.space.NOut()+n)
	}
	return b
}

// InsertDims is AddDims at an arbitrary position first (spec §4.1's
// insert_dims).
func (b *BasicMap) InsertDims(k space.Kind, first, n int) *BasicMap {
	if n == 0 {
		return b
	}
	b = b.cow()
	at := b.space.Offset(k) + first
	b.insertColumns(at, n)
	switch k {
	case space.Param:
		b.space = space.New(b.space.NParam()+n, b.space.NIn(), b.space.NOut())
	case space.In:
		b.space = space.New(b.space.NParam(), b.space.NIn()+n, b.space.NOut())
	case space.Out:
		b.space = space.New(b.space.NParam(), b.space.NIn(), b.space.NOut()+n)
	}
	return b
}

func (b *BasicMap) insertColumns(at, n int) {
	ins := func(r num.Row) num.Row {
		out := make(num.Row, len(r)+n)
		copy(out, r[:at])
		for i := 0; i < n; i++ {
			out[at+i] = num.Zero
		}
		copy(out[at+n:], r[at:])
		return out
	}
	for i, r := range b.eqs {
		b.eqs[i] = ins(r)
	}
	for i, r := range b.ineqs {
		b.ineqs[i] = ins(r)
	}
	for i, d := range b.divs {
		if at <= len(d.Def) {
			b.divs[i].Def = ins(d.Def)
		}
	}
	b.invalidateDerived()
}

// MoveDims relocates n dimensions of kind srcKind starting at srcFirst to
// become dimensions of kind dstKind starting at dstFirst (spec §4.1's
// move_dims). It is implemented as insert-then-eliminate-original-slot on
// the column layout: since columns are moved (not eliminated), the
// dimension's coefficient column is physically relocated rather than
// recomputed.
func (b *BasicMap) MoveDims(dstKind space.Kind, dstFirst int, srcKind space.Kind, srcFirst, n int) *BasicMap {
	if n == 0 {
		return b
	}
	b = b.cow()
	srcCol := b.space.Offset(srcKind) + srcFirst
	for i := 0; i < n; i++ {
		// Recompute dst column on every iteration since prior moves shift
		// later offsets.
		dstCol := b.space.Offset(dstKind) + dstFirst + i
		b.relocateColumn(srcCol, dstCol)
		if dstKind < srcKind || (dstKind == srcKind && dstCol < srcCol) {
			srcCol++ // the source column shifted right by the insert
		}
	}
	nShrunk := shrinkSpace(b.space, srcKind, n)
	switch dstKind {
	case space.Param:
		b.space = space.New(nShrunk.NParam()+n, nShrunk.NIn(), nShrunk.NOut())
	case space.In:
		b.space = space.New(nShrunk.NParam(), nShrunk.NIn()+n, nShrunk.NOut())
	case space.Out:
		b.space = space.New(nShrunk.NParam(), nShrunk.NIn(), nShrunk.NOut()+n)
	}
	return b
}

// relocateColumn moves column src to position dst, shifting the columns
// in between, for every row.
func (b *BasicMap) relocateColumn(src, dst int) {
	move := func(r num.Row) num.Row {
		if src == dst {
			return r
		}
		v := r[src]
		out := append(r[:src:src], r[src+1:]...)
		out = append(out[:dst], append(num.Row{v}, out[dst:]...)...)
		return out
	}
	for i, r := range b.eqs {
		b.eqs[i] = move(r)
	}
	for i, r := range b.ineqs {
		b.ineqs[i] = move(r)
	}
}

// Reverse swaps the In and Out dimension groups of a basic map, including
// the corresponding row columns (spec §4.1's reverse(M)).
func (b *BasicMap) Reverse() *BasicMap {
	b = b.cow()
	inOff, inN := b.space.Offset(space.In), b.space.NIn()
	outOff, outN := b.space.Offset(space.Out), b.space.NOut()
	swap := func(r num.Row) num.Row {
		out := r.Clone()
		in := r[inOff : inOff+inN]
		outPart := r[outOff : outOff+outN]
		// Build the new layout: params, then old-out (as new-in), then
		// old-in (as new-out).
		merged := make(num.Row, 0, inN+outN)
		merged = append(merged, outPart...)
		merged = append(merged, in...)
		copy(out[inOff:inOff+inN+outN], merged)
		return out
	}
	if inN != outN {
		// Widths differ: fall back to explicit column reconstruction.
		swap = func(r num.Row) num.Row {
			out := make(num.Row, len(r))
			copy(out, r[:inOff])
			copy(out[inOff:], r[outOff:outOff+outN])
			copy(out[inOff+outN:], r[inOff:inOff+inN])
			copy(out[inOff+outN+inN:], r[outOff+outN:])
			return out
		}
	}
	for i, r := range b.eqs {
		b.eqs[i] = swap(r)
	}
	for i, r := range b.ineqs {
		b.ineqs[i] = swap(r)
	}
	for i, d := range b.divs {
		if len(d.Def) >= outOff+outN {
			b.divs[i].Def = swap(d.Def)
		}
	}
	b.space = b.space.Reverse()
	return b
}

// Intersect returns the conjunction of a and b: every constraint of both,
// and the union of their divs (aligned via AlignDivs). a and b must share
// a compatible space.
func Intersect(a, b *BasicMap) *BasicMap {
	if !a.space.Compatible(b.space) {
		fault("Intersect", "incompatible spaces")
	}
	a = a.Copy().cow()
	b = AlignDivs(a, b)
	for _, r := range b.eqs {
		a.eqs = append(a.eqs, r.Clone())
	}
	for _, r := range b.ineqs {
		a.ineqs = append(a.ineqs, r.Clone())
	}
	a.invalidateDerived()
	if b.flags.Has(Empty) {
		a = a.MarkEmpty()
	}
	return a
}

// ApplyDomain computes M applied to N's domain: restricts m's input
// dimensions by intersecting with n (a set over the input space), then
// projects the input dimensions out (spec §4.1's apply_domain).
func ApplyDomain(m, n *BasicMap) *BasicMap {
	nIn := m.space.NIn()
	lifted := liftSetToIn(n, m.space)
	r := Intersect(m, lifted)
	return r.ProjectOut(space.In, 0, nIn)
}

// ApplyRange is ApplyDomain over the output dimensions.
func ApplyRange(m, n *BasicMap) *BasicMap {
	nOut := m.space.NOut()
	lifted := liftSetToOut(n, m.space)
	r := Intersect(m, lifted)
	return r.ProjectOut(space.Out, 0, nOut)
}

// liftSetToIn reinterprets set n (space (p,0,o)) as a basic map over
// target's (param,in,out) space whose Out dimensions are unconstrained
// and whose In dimensions carry n's set dimensions.
func liftSetToIn(n *BasicMap, target space.Space) *BasicMap {
	sp := space.New(target.NParam(), target.NIn(), target.NOut())
	out := Universe(sp)
	for i := 0; i < n.NEq(); i++ {
		out = out.addRowFrom(true, n, n.Eq(i), sp)
	}
	for i := 0; i < n.NIneq(); i++ {
		out = out.addRowFrom(false, n, n.Ineq(i), sp)
	}
	return out
}

func liftSetToOut(n *BasicMap, target space.Space) *BasicMap {
	sp := space.New(target.NParam(), target.NIn(), target.NOut())
	out := Universe(sp)
	for i := 0; i < n.NEq(); i++ {
		out = out.addRowFromOut(true, n, n.Eq(i), sp)
	}
	for i := 0; i < n.NIneq(); i++ {
		out = out.addRowFromOut(false, n, n.Ineq(i), sp)
	}
	return out
}

// addRowFrom copies a set row (layout [const|params|dims]) into a basic
// map's In columns.
func (out *BasicMap) addRowFrom(isEq bool, src *BasicMap, row num.Row, sp space.Space) *BasicMap {
	var idx int
	if isEq {
		out, idx = out.AddEquality()
	} else {
		out, idx = out.AddInequality()
	}
	nParam := sp.NParam()
	setRowCoeff(out, isEq, idx, 0, row[0])
	for p := 0; p < nParam; p++ {
		setRowCoeff(out, isEq, idx, sp.Offset(space.Param)+p, row[1+p])
	}
	for d := 0; d < src.space.NOut(); d++ {
		setRowCoeff(out, isEq, idx, sp.Offset(space.In)+d, row[1+nParam+d])
	}
	return out
}

func (out *BasicMap) addRowFromOut(isEq bool, src *BasicMap, row num.Row, sp space.Space) *BasicMap {
	var idx int
	if isEq {
		out, idx = out.AddEquality()
	} else {
		out, idx = out.AddInequality()
	}
	nParam := sp.NParam()
	setRowCoeff(out, isEq, idx, 0, row[0])
	for p := 0; p < nParam; p++ {
		setRowCoeff(out, isEq, idx, sp.Offset(space.Param)+p, row[1+p])
	}
	for d := 0; d < src.space.NOut(); d++ {
		setRowCoeff(out, isEq, idx, sp.Offset(space.Out)+d, row[1+nParam+d])
	}
	return out
}

func setRowCoeff(b *BasicMap, isEq bool, idx, col int, v num.Int) {
	if isEq {
		b.SetEqCoeff(idx, col, v)
	} else {
		b.SetIneqCoeff(idx, col, v)
	}
}

// Product concatenates the In/Out dims of a and b pairwise (spec §4.1).
// TODO: carry over a's and b's divs into the product space (via the same
// column-merge AlignDivs uses) instead of dropping any div-dependent
// constraints; no caller exercises a div-carrying product yet.
func Product(a, b *BasicMap) *BasicMap {
	sp := space.Product(a.space, b.space)
	out := Universe(sp)
	place := func(isEq bool, src *BasicMap, row num.Row, inOff, outOff int) {
		var idx int
		if isEq {
			out, idx = out.AddEquality()
		} else {
			out, idx = out.AddInequality()
		}
		out.SetEqCoeffOrIneq(isEq, idx, 0, row[0])
		for p := 0; p < src.space.NParam(); p++ {
			out.SetEqCoeffOrIneq(isEq, idx, sp.Offset(space.Param)+p, row[1+p])
		}
		for i := 0; i < src.space.NIn(); i++ {
			out.SetEqCoeffOrIneq(isEq, idx, sp.Offset(space.In)+inOff+i, row[src.space.Offset(space.In)+i])
		}
		for o := 0; o < src.space.NOut(); o++ {
			out.SetEqCoeffOrIneq(isEq, idx, sp.Offset(space.Out)+outOff+o, row[src.space.Offset(space.Out)+o])
		}
	}
	for i := 0; i < a.NEq(); i++ {
		place(true, a, a.Eq(i), 0, 0)
	}
	for i := 0; i < a.NIneq(); i++ {
		place(false, a, a.Ineq(i), 0, 0)
	}
	for i := 0; i < b.NEq(); i++ {
		place(true, b, b.Eq(i), a.space.NIn(), a.space.NOut())
	}
	for i := 0; i < b.NIneq(); i++ {
		place(false, b, b.Ineq(i), a.space.NIn(), a.space.NOut())
	}
	return out
}

// SetEqCoeffOrIneq is a tiny dispatch helper used by Product's row
// placement loop, which handles both row kinds uniformly.
func (b *BasicMap) SetEqCoeffOrIneq(isEq bool, idx, col int, v num.Int) {
	if isEq {
		b.SetEqCoeff(idx, col, v)
	} else {
		b.SetIneqCoeff(idx, col, v)
	}
}

// AlignDivs extends dst with exactly those divs of src that dst does not
// already contain (by identical definition) and returns a clone of src
// whose divs have been permuted and/or dropped so that matching divs
// share indices with dst (spec §4.1's align_divs). dst is mutated in
// place (it has already been cow'd by the caller).
func AlignDivs(dst *BasicMap, src *BasicMap) *BasicMap {
	src = src.Copy().cow()
	mapping := make([]int, src.NDiv())
	for i, d := range src.divs {
		found := -1
		for j, e := range dst.divs {
			if sameDiv(d, e) {
				found = j
				break
			}
		}
		if found == -1 {
			dst2, idx := dst.AddDiv()
			*dst = *dst2
			dst.divs[idx] = Div{Denom: d.Denom, Def: resizeDef(d.Def, dst.Width())}
			found = idx
		}
		mapping[i] = found
	}
	return permuteDivs(src, mapping, dst.NDiv())
}

func sameDiv(a, b Div) bool {
	if a.Denom.Cmp(b.Denom) != 0 {
		return false
	}
	n := len(a.Def)
	if len(b.Def) < n {
		n = len(b.Def)
	}
	for i := 0; i < n; i++ {
		if a.Def[i].Cmp(b.Def[i]) != 0 {
			return false
		}
	}
	for i := n; i < len(a.Def); i++ {
		if !a.Def[i].IsZero() {
			return false
		}
	}
	for i := n; i < len(b.Def); i++ {
		if !b.Def[i].IsZero() {
			return false
		}
	}
	return true
}

func resizeDef(def num.Row, width int) num.Row {
	out := make(num.Row, width)
	copy(out, def)
	for i := len(def); i < width; i++ {
		out[i] = num.Zero
	}
	return out
}

// permuteDivs rewrites src so that its div i now occupies column
// targetBase+mapping[i], widening rows to totalDivs columns of div space.
func permuteDivs(src *BasicMap, mapping []int, totalDivs int) *BasicMap {
	base := src.space.Total()
	oldWidth := src.Width()
	grow := func(r num.Row) num.Row {
		out := make(num.Row, base+totalDivs)
		copy(out, r[:base])
		for i, m := range mapping {
			out[base+m] = r[base+i]
		}
		return out
	}
	_ = oldWidth
	for i, r := range src.eqs {
		src.eqs[i] = grow(r)
	}
	for i, r := range src.ineqs {
		src.ineqs[i] = grow(r)
	}
	newDivs := make([]Div, totalDivs)
	for i, m := range mapping {
		newDivs[m] = Div{Denom: src.divs[i].Denom, Def: grow(resizeDef(src.divs[i].Def, base+len(mapping)))}
	}
	src.divs = newDivs
	return src
}
