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
	"github.com/Meinersbur/islgo/internal/core/debug"
	"github.com/Meinersbur/islgo/internal/core/eval"
	"github.com/Meinersbur/islgo/internal/core/hull"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// A Set is a disjunctive union of BasicSets: the points it contains
// are exactly those contained by at least one of its basic sets.
type Set struct {
	m *eval.Map
}

// NewSet builds a Set from its constituent basic sets.
func (c *Context) NewSet(sp space.Space, basics ...BasicSet) Set {
	disjuncts := make([]*adt.BasicMap, len(basics))
	for i, b := range basics {
		disjuncts[i] = b.b
	}
	return Set{m: eval.NewMap(sp, disjuncts...)}
}

// FromBasicSet wraps a single BasicSet as a one-disjunct Set.
func FromBasicSet(b BasicSet) Set {
	return Set{m: eval.FromBasicMap(b.b)}
}

// EmptySet returns the set containing no points of sp.
func (c *Context) EmptySet(sp space.Space) Set {
	return Set{m: eval.Empty(sp)}
}

// Space returns s's space.
func (s Set) Space() space.Space { return s.m.Space() }

// NumBasicSets returns the number of disjuncts s carries.
func (s Set) NumBasicSets() int { return s.m.NumBasicMaps() }

// BasicSet returns s's i'th disjunct.
func (s Set) BasicSet(i int) BasicSet { return BasicSet{b: s.m.BasicMap(i)} }

// Foreach calls f for each disjunct of s in turn, stopping early if f
// returns false.
func (s Set) Foreach(f func(BasicSet) bool) {
	s.m.Foreach(func(b *adt.BasicMap) bool { return f(BasicSet{b: b}) })
}

// IsEmpty reports whether s contains no points.
func (s Set) IsEmpty() bool { return s.m.IsEmpty() }

// Union returns the points contained by either s or t.
func (s Set) Union(t Set) Set {
	return Set{m: eval.Union(s.m, t.m)}
}

// Intersect returns the points contained by both s and t.
func (s Set) Intersect(t Set) Set {
	return Set{m: eval.Intersect(s.m, t.m)}
}

// Subtract returns the points of s not contained in t.
func (s Set) Subtract(t Set) Set {
	return Set{m: eval.Subtract(s.m, t.m)}
}

// Coalesce merges disjuncts of s that combine into a single basic set,
// without changing the set of points s contains.
func (s Set) Coalesce() Set {
	return Set{m: s.m.Coalesce()}
}

// Finalize drops disjuncts of s wholly contained in another, the
// cleanup pass every constructed Set should go through before being
// handed to a caller.
func (s Set) Finalize() Set {
	return Set{m: s.m.Finalize()}
}

// AffineHull returns the smallest basic set defined purely by
// equalities that contains every point of s.
func (s Set) AffineHull() BasicSet {
	return BasicSet{b: hull.AffineHull(s.disjuncts())}
}

// ConvexHull returns the smallest convex basic set containing every
// point of s.
func (s Set) ConvexHull() BasicSet {
	return BasicSet{b: hull.ConvexHull(s.disjuncts())}
}

func (s Set) disjuncts() []*adt.BasicMap {
	out := make([]*adt.BasicMap, s.m.NumBasicMaps())
	for i := range out {
		out[i] = s.m.BasicMap(i)
	}
	return out
}

// String renders every disjunct of s in ISL text format, separated by
// semicolons.
func (s Set) String() string {
	return debug.MapString(s.disjuncts(), nil)
}
