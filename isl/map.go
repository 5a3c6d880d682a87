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

package isl

import (
	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/closure"
	"github.com/Meinersbur/islgo/internal/core/debug"
	"github.com/Meinersbur/islgo/internal/core/eval"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// A Map is a disjunctive union of BasicMaps, the binary-relation
// counterpart of Set.
type Map struct {
	m *eval.Map
}

// NewMap builds a Map from its constituent basic maps.
func (c *Context) NewMap(sp space.Space, basics ...BasicMap) Map {
	disjuncts := make([]*adt.BasicMap, len(basics))
	for i, b := range basics {
		disjuncts[i] = b.b
	}
	return Map{m: eval.NewMap(sp, disjuncts...)}
}

// FromBasicMap wraps a single BasicMap as a one-disjunct Map.
func FromBasicMap(b BasicMap) Map {
	return Map{m: eval.FromBasicMap(b.b)}
}

// EmptyMap returns the map relating no pairs of sp.
func (c *Context) EmptyMap(sp space.Space) Map {
	return Map{m: eval.Empty(sp)}
}

// Space returns m's space.
func (m Map) Space() space.Space { return m.m.Space() }

// NumBasicMaps returns the number of disjuncts m carries.
func (m Map) NumBasicMaps() int { return m.m.NumBasicMaps() }

// BasicMap returns m's i'th disjunct.
func (m Map) BasicMap(i int) BasicMap { return BasicMap{b: m.m.BasicMap(i)} }

// Foreach calls f for each disjunct of m in turn, stopping early if f
// returns false.
func (m Map) Foreach(f func(BasicMap) bool) {
	m.m.Foreach(func(b *adt.BasicMap) bool { return f(BasicMap{b: b}) })
}

// IsEmpty reports whether m relates no pairs.
func (m Map) IsEmpty() bool { return m.m.IsEmpty() }

// Union returns the pairs related by either m or n.
func (m Map) Union(n Map) Map {
	return Map{m: eval.Union(m.m, n.m)}
}

// Intersect returns the pairs related by both m and n.
func (m Map) Intersect(n Map) Map {
	return Map{m: eval.Intersect(m.m, n.m)}
}

// Subtract returns the pairs of m not related by n.
func (m Map) Subtract(n Map) Map {
	return Map{m: eval.Subtract(m.m, n.m)}
}

// ApplyDomain restricts m's pairs to those whose input also appears as
// the input of some pair in n.
func (m Map) ApplyDomain(n Map) Map {
	return Map{m: eval.ApplyDomain(m.m, n.m)}
}

// ApplyRange composes m with n on m's output / n's input.
func (m Map) ApplyRange(n Map) Map {
	return Map{m: eval.ApplyRange(m.m, n.m)}
}

// Reverse swaps every disjunct's input and output tuple.
func (m Map) Reverse() Map {
	return Map{m: eval.Reverse(m.m)}
}

// Coalesce merges disjuncts of m that combine into a single basic map,
// without changing the relation m represents.
func (m Map) Coalesce() Map {
	return Map{m: m.m.Coalesce()}
}

// Finalize drops disjuncts of m wholly contained in another.
func (m Map) Finalize() Map {
	return Map{m: m.m.Finalize()}
}

// TransitiveClosure computes an over-approximation of m composed with
// itself one-or-more times, using alg to bound each disjunct. exact
// reports whether the result is known to be precise rather than a
// conservative over-approximation.
func (m Map) TransitiveClosure(alg ClosureAlgorithm) (result Map, exact bool) {
	rawResult, exact := closure.Closure(closure.Algorithm(alg), m.disjuncts())
	return Map{m: eval.NewMap(m.Space(), rawResult...)}, exact
}

// A ClosureAlgorithm selects which bounding technique
// Map.TransitiveClosure uses per strongly-connected component of
// disjuncts.
type ClosureAlgorithm closure.Algorithm

// Closure algorithm selectors, matching the "closure" option of
// Options (spec §6): ClosureISL and ClosureOmega are the two
// Presburger-exact strategies, ClosureBox is the interval-based
// fallback.
const (
	ClosureISL   = ClosureAlgorithm(closure.ISL)
	ClosureOmega = ClosureAlgorithm(closure.OMEGA)
	ClosureBox   = ClosureAlgorithm(closure.Box)
)

func (m Map) disjuncts() []*adt.BasicMap {
	out := make([]*adt.BasicMap, m.m.NumBasicMaps())
	for i := range out {
		out[i] = m.m.BasicMap(i)
	}
	return out
}

// String renders every disjunct of m in ISL text format, separated by
// semicolons.
func (m Map) String() string {
	return debug.MapString(m.disjuncts(), nil)
}
