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

// Package subtract implements spec component C12: A \ (∪ Bᵢ) as a
// disjoint union, by a backtracking split over each Bᵢ's constraints.
package subtract

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
)

// Basic returns a \ (b₀ ∪ b₁ ∪ ...), as a disjoint list of basic maps.
func Basic(a *adt.BasicMap, bs []*adt.BasicMap) []*adt.BasicMap {
	pieces := []*adt.BasicMap{a.Copy()}
	for _, b := range bs {
		var next []*adt.BasicMap
		for _, p := range pieces {
			if p.FastIsEmpty() {
				continue
			}
			next = append(next, split(p, b)...)
		}
		pieces = next
		if len(pieces) == 0 {
			break
		}
	}
	out := pieces[:0]
	for _, p := range pieces {
		if !p.IsEmpty() {
			out = append(out, p)
		}
	}
	return out
}

// split returns p \ b as a disjoint union, one piece per clause of b: the
// k-th piece keeps clauses 0..k-1 of b true (so later pieces don't
// overlap earlier ones) and negates clause k. Since the conjunction of
// all clauses is exactly b's point set, the union of these pieces is
// exactly p minus that conjunction, matching isl_map_subtract.c's
// backtracking tree over b's constraints (spec §4.7), generalized here to
// a flat clause list instead of an explicit recursion/undo stack.
func split(p, b *adt.BasicMap) []*adt.BasicMap {
	clauses := clausesOf(b)
	var out []*adt.BasicMap
	for k, row := range clauses {
		piece := p.Copy()
		for j := 0; j < k; j++ {
			piece = addIneq(piece, clauses[j])
		}
		piece = addIneq(piece, strictComplement(row))
		piece = piece.Simplify()
		if !piece.FastIsEmpty() {
			out = append(out, piece)
		}
	}
	return out
}

// clausesOf flattens b's constraints into inequality-only clauses: each
// equality f=0 becomes the pair f>=0, -f>=0, since f=0 holds exactly when
// both directions hold.
func clausesOf(b *adt.BasicMap) []num.Row {
	rows := make([]num.Row, 0, 2*b.NEq()+b.NIneq())
	for i := 0; i < b.NEq(); i++ {
		r := b.Eq(i)
		rows = append(rows, r.Clone(), r.Clone().Negate())
	}
	for i := 0; i < b.NIneq(); i++ {
		rows = append(rows, b.Ineq(i).Clone())
	}
	return rows
}

// strictComplement returns the integer-valid negation of "row >= 0",
// namely "row <= -1", i.e. "-row - 1 >= 0".
func strictComplement(row num.Row) num.Row {
	neg := row.Clone().Negate()
	neg[0] = neg[0].Sub(num.One)
	return neg
}

func addIneq(b *adt.BasicMap, row num.Row) *adt.BasicMap {
	b, idx := b.AddInequality()
	for c, v := range row {
		b.SetIneqCoeff(idx, c, v)
	}
	return b
}
