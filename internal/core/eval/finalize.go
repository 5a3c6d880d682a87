// Copyright 2021 CUE Authors
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

package eval

import (
	"github.com/mpvl/unique"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
)

// Finalize runs the structural simplify pass (adt.(*BasicMap).Simplify)
// over every disjunct and drops any that turn out empty, collapses any
// that are now syntactically identical (via github.com/mpvl/unique's
// sort-then-collapse, the same dedup idiom package adt's dedupRows uses
// for constraint rows), then removes disjuncts wholly contained in
// another (spec §4.6's "remove a disjunct subsumed by another", a
// cheaper pre-pass before the full Coalesce).
func (m *Map) Finalize() *Map {
	out := &Map{space: m.space}
	for _, d := range m.disjuncts {
		s := d.Simplify()
		if !s.FastIsEmpty() {
			out.disjuncts = append(out.disjuncts, s)
		}
	}
	if len(out.disjuncts) > 1 {
		k := unique.Sort(disjunctSlice(out.disjuncts))
		out.disjuncts = out.disjuncts[:k]
	}
	return out.dropSubsumed()
}

// disjunctSlice adapts a []*adt.BasicMap to sort.Interface so
// unique.Sort can order and collapse syntactically identical disjuncts:
// after Simplify, each disjunct's own rows are already in dedupRows's
// canonical order, so two disjuncts with the same constraints sort as
// exact neighbors.
type disjunctSlice []*adt.BasicMap

func (s disjunctSlice) Len() int      { return len(s) }
func (s disjunctSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s disjunctSlice) Less(i, j int) bool {
	a, b := s[i], s[j]
	if c := rowListCompare(eqRows(a), eqRows(b)); c != 0 {
		return c < 0
	}
	return rowListCompare(ineqRows(a), ineqRows(b)) < 0
}

func eqRows(b *adt.BasicMap) []num.Row {
	rows := make([]num.Row, b.NEq())
	for i := range rows {
		rows[i] = b.Eq(i)
	}
	return rows
}

func ineqRows(b *adt.BasicMap) []num.Row {
	rows := make([]num.Row, b.NIneq())
	for i := range rows {
		rows[i] = b.Ineq(i)
	}
	return rows
}

// rowListCompare orders two row lists lexicographically by their rows,
// then by length, for disjunctSlice's exact-duplicate detection.
func rowListCompare(a, b []num.Row) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if rowLess(a[i], b[i]) {
			return -1
		}
		if rowLess(b[i], a[i]) {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func (m *Map) dropSubsumed() *Map {
	keep := make([]bool, len(m.disjuncts))
	for i := range keep {
		keep[i] = true
	}
	for i, a := range m.disjuncts {
		if !keep[i] {
			continue
		}
		for j, b := range m.disjuncts {
			if i == j || !keep[j] {
				continue
			}
			if subsumes(b, a) && !subsumes(a, b) {
				keep[i] = false
				break
			}
		}
	}
	out := &Map{space: m.space}
	for i, d := range m.disjuncts {
		if keep[i] {
			out.disjuncts = append(out.disjuncts, d)
		}
	}
	return out
}

// subsumes reports whether b's every constraint is syntactically present
// among a's rows (after each has been Gauss/Normalize reduced), so that a
// is a refinement of b and a's disjunct is redundant in a union with b.
// This under-approximates true (tab-based) containment by design — it is
// only a cheap pre-pass; the full Coalesce pass in disjunct.go uses
// coalesce's constraint-status classification for the precise case.
func subsumes(b, a *adt.BasicMap) bool {
	if !b.Space().Compatible(a.Space()) {
		return false
	}
	for i := 0; i < b.NEq(); i++ {
		if !rowAmong(b.Eq(i), a, true) {
			return false
		}
	}
	for i := 0; i < b.NIneq(); i++ {
		if !rowAmong(b.Ineq(i), a, false) {
			return false
		}
	}
	return true
}

func rowAmong(r num.Row, a *adt.BasicMap, isEq bool) bool {
	n := a.NIneq()
	get := a.Ineq
	if isEq {
		n = a.NEq()
		get = a.Eq
	}
	for i := 0; i < n; i++ {
		if rowEqual(get(i), r) {
			return true
		}
	}
	return false
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
