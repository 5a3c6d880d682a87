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

// Package eval implements spec component C5: a set/map as a disjunction
// ("union") of basic maps, plus the union/intersect/subtract/coalesce
// operations that treat the disjuncts as a whole rather than one basic
// map at a time.
package eval

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// Map is spec §4.2's (possibly disjunctive) map or set: a list of basic
// maps sharing a space, implicitly unioned. A Map with zero disjuncts is
// the empty map over its space.
type Map struct {
	space     space.Space
	disjuncts []*adt.BasicMap
}

// NewMap wraps disjuncts (which must all share sp) into a Map.
func NewMap(sp space.Space, disjuncts ...*adt.BasicMap) *Map {
	for _, d := range disjuncts {
		if !d.Space().Compatible(sp) {
			panic("eval: NewMap: disjunct space mismatch")
		}
	}
	return &Map{space: sp, disjuncts: append([]*adt.BasicMap(nil), disjuncts...)}
}

// FromBasicMap lifts a single basic map to a one-disjunct Map.
func FromBasicMap(b *adt.BasicMap) *Map {
	return &Map{space: b.Space(), disjuncts: []*adt.BasicMap{b}}
}

// Empty returns the empty map over sp (zero disjuncts).
func Empty(sp space.Space) *Map { return &Map{space: sp} }

func (m *Map) Space() space.Space       { return m.space }
func (m *Map) NumBasicMaps() int        { return len(m.disjuncts) }
func (m *Map) BasicMap(i int) *adt.BasicMap { return m.disjuncts[i] }

// Foreach calls f for every disjunct, stopping early if f returns false.
func (m *Map) Foreach(f func(*adt.BasicMap) bool) {
	for _, d := range m.disjuncts {
		if !f(d) {
			return
		}
	}
}

// IsEmpty reports whether every disjunct is empty.
func (m *Map) IsEmpty() bool {
	for _, d := range m.disjuncts {
		if !d.IsEmpty() {
			return false
		}
	}
	return true
}

// Union returns the disjunction of m and n's disjuncts (spec §4.2's
// union): the plain list concatenation, deferring simplification to
// Coalesce.
func Union(m, n *Map) *Map {
	if !m.space.Compatible(n.space) {
		panic("eval: Union: space mismatch")
	}
	out := &Map{space: m.space}
	out.disjuncts = append(out.disjuncts, m.disjuncts...)
	out.disjuncts = append(out.disjuncts, n.disjuncts...)
	return out.dropEmpty()
}

// Intersect returns the pairwise conjunction of m's and n's disjuncts
// (spec §4.2's intersect): distributing intersection over union.
func Intersect(m, n *Map) *Map {
	if !m.space.Compatible(n.space) {
		panic("eval: Intersect: space mismatch")
	}
	out := &Map{space: m.space}
	for _, a := range m.disjuncts {
		for _, b := range n.disjuncts {
			r := adt.Intersect(a, b)
			if !r.FastIsEmpty() {
				out.disjuncts = append(out.disjuncts, r)
			}
		}
	}
	return out
}

func (m *Map) dropEmpty() *Map {
	out := &Map{space: m.space}
	for _, d := range m.disjuncts {
		if !d.FastIsEmpty() {
			out.disjuncts = append(out.disjuncts, d)
		}
	}
	return out
}

// Complement-free operations (apply, reverse, product) lift componentwise
// over the disjuncts, matching isl's "apply to every basic map, union the
// results" strategy for the non-basic entry points.

// ApplyDomain lifts adt.ApplyDomain over every disjunct of m against n.
func ApplyDomain(m, n *Map) *Map {
	out := &Map{}
	for _, dm := range m.disjuncts {
		for _, dn := range n.disjuncts {
			r := adt.ApplyDomain(dm, dn)
			if !r.FastIsEmpty() {
				out.space = r.Space()
				out.disjuncts = append(out.disjuncts, r)
			}
		}
	}
	return out
}

// ApplyRange is ApplyDomain over the output dimensions.
func ApplyRange(m, n *Map) *Map {
	out := &Map{}
	for _, dm := range m.disjuncts {
		for _, dn := range n.disjuncts {
			r := adt.ApplyRange(dm, dn)
			if !r.FastIsEmpty() {
				out.space = r.Space()
				out.disjuncts = append(out.disjuncts, r)
			}
		}
	}
	return out
}

// Reverse lifts adt.(*BasicMap).Reverse over every disjunct.
func Reverse(m *Map) *Map {
	out := &Map{}
	for _, d := range m.disjuncts {
		r := d.Reverse()
		out.space = r.Space()
		out.disjuncts = append(out.disjuncts, r)
	}
	return out
}
